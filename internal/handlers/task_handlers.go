package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"time"

	"go.uber.org/zap"
)

const (
	MessageCreated = "Task created successfully"
	MessageUpdated = "Task updated successfully"
	MessageDeleted = "Task deleted successfully"
)

const maxBodyBytes = 1 << 20

type TaskHandler struct {
	TaskService Service
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Health check не пройден", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", "task-manager"),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "task-manager"),
	)
}

// ListTasks: неизвестное значение sort молча игнорируется
func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query := r.URL.Query()
	filter := task.ListFilter{
		Search: query.Get("search"),
		Sort:   task.ParseSortField(query.Get("sort")),
	}

	if raw := query.Get("sort"); raw != "" && filter.Sort == task.SortNone {
		logger.Debug("HTTP: Неизвестное поле сортировки проигнорировано", zap.String("sort", raw))
	}

	tasks, err := s.TaskService.ListTasks(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Debug("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

// decodeTaskRequest пишет ответ с ошибкой сам и возвращает false, если тело не разобрано
func decodeTaskRequest(w http.ResponseWriter, r *http.Request) (dto.TaskRequest, bool) {
	var request dto.TaskRequest

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return request, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return request, false
	}

	// после объекта в теле не должно быть ничего, кроме пробелов
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		logger.Warn("HTTP: лишние данные после JSON",
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: лишние данные после JSON объекта")
		return request, false
	}

	return request, true
}

func (s *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	request, ok := decodeTaskRequest(w, r)
	if !ok {
		return
	}

	id, err := s.TaskService.CreateTask(r.Context(), request.ToTask())
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.CreateTaskResponse{ID: id, Message: MessageCreated})
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	found, err := s.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(found))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := parseTaskID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, ok := decodeTaskRequest(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.UpdateTask(r.Context(), id, request.ToTask()); err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: MessageUpdated})
}

// DeleteTaskByID отвечает успехом и для отсутствующей задачи
func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена", zap.Int64("task_id", id))

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: MessageDeleted})
}
