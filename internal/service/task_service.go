package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

const resourceTask = "задача"

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка хранилища: %w", err)
	}
	return nil
}

// ValidateTask проверяет, что все семь полей задачи заданы
func ValidateTask(t *task.Task) error {
	required := []struct {
		field string
		value string
	}{
		{"title", t.Title},
		{"description", t.Description},
		{"status", string(t.Status)},
		{"priority", string(t.Priority)},
		{"category", t.Category},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return NewValidationError(r.field, "обязательное поле")
		}
	}

	if t.DueDate.IsZero() {
		return NewValidationError("due_date", "обязательное поле")
	}
	if t.CreateDate.IsZero() {
		return NewValidationError("create_date", "обязательное поле")
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) CreateTask(ctx context.Context, fields *task.Task) (int64, error) {
	if err := ValidateTask(fields); err != nil {
		return 0, err
	}

	newTask := &task.Task{}
	newTask.Replace(fields)

	if err := s.repo.Create(ctx, newTask); err != nil {
		return 0, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("task_id", newTask.ID))
	return newTask.ID, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(resourceTask, id, err)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return found, nil
}

// UpdateTask заменяет все поля задачи. Отсутствующая задача не создаётся.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, fields *task.Task) error {
	if err := ValidateTask(fields); err != nil {
		return err
	}

	existing, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return err
	}

	existing.Replace(fields)

	if err := s.repo.Update(ctx, existing); err != nil {
		// задачу могли удалить между чтением и записью
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача удалена до обновления", zap.Int64("target_id", id))
			return NewNotFound(resourceTask, id, err)
		}
		return fmt.Errorf("обновление задачи: %w", err)
	}

	logger.Info("Service: Задача обновлена", zap.Int64("task_id", id))
	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}
