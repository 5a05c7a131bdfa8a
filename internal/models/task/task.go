package task

import (
	"time"
)

type Task struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	DueDate     time.Time `json:"due_date" db:"due_date"`
	CreateDate  time.Time `json:"create_date" db:"create_date"`
	Status      Status    `json:"status" db:"status"`
	Priority    Priority  `json:"priority" db:"priority"`
	Category    string    `json:"category" db:"category"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Status string
type Priority string

// значения, которые используют клиенты; хранилище принимает любую непустую строку
const StatusNotCompleted Status = "not completed"
const StatusCompleted Status = "completed"

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

// Replace переносит все поля, задаваемые клиентом, из src.
// ID и служебные отметки времени не трогаются.
func (t *Task) Replace(src *Task) {
	t.Title = src.Title
	t.Description = src.Description
	t.DueDate = src.DueDate
	t.CreateDate = src.CreateDate
	t.Status = src.Status
	t.Priority = src.Priority
	t.Category = src.Category
}
