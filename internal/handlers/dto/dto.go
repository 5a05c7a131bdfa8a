package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"taskManager/internal/models/task"
	"time"
)

// DateTimeLayout - формат дат, в котором их присылают клиенты и в котором они отдаются обратно
const DateTimeLayout = "2006-01-02 15:04:05"

var acceptedLayouts = []string{
	DateTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// DateTime принимает несколько форматов и всегда хранит время в UTC
// с точностью до секунды, как в DateTimeLayout
type DateTime struct {
	time.Time
}

func ParseDateTime(raw string) (DateTime, error) {
	for _, layout := range acceptedLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return DateTime{Time: parsed.UTC().Truncate(time.Second)}, nil
		}
	}
	return DateTime{}, fmt.Errorf("неверный формат даты %q, ожидается %q", raw, DateTimeLayout)
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("дата должна быть строкой: %w", err)
	}
	if raw == "" {
		return nil
	}

	parsed, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(DateTimeLayout))
}

// TaskRequest - тело POST и PUT запросов. Все поля обязательны, PUT заменяет задачу целиком.
type TaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     DateTime `json:"due_date"`
	CreateDate  DateTime `json:"create_date"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Category    string   `json:"category"`
}

func (r TaskRequest) ToTask() *task.Task {
	return &task.Task{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.Time,
		CreateDate:  r.CreateDate.Time,
		Status:      task.Status(r.Status),
		Priority:    task.Priority(r.Priority),
		Category:    r.Category,
	}
}

type TaskResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     DateTime `json:"due_date"`
	CreateDate  DateTime `json:"create_date"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Category    string   `json:"category"`
	CreatedAt   DateTime `json:"created_at"`
	UpdatedAt   DateTime `json:"updated_at"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     DateTime{Time: t.DueDate},
		CreateDate:  DateTime{Time: t.CreateDate},
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Category:    t.Category,
		CreatedAt:   DateTime{Time: t.CreatedAt},
		UpdatedAt:   DateTime{Time: t.UpdatedAt},
	}
}

// FromTaskList никогда не возвращает nil, пустой список сериализуется как []
func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type CreateTaskResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
