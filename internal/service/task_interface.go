package service

import (
	"context"
	"taskManager/internal/models/task"
)

// TaskRepository реализуют хранилища из repository/task/*.
// GetByID и Update возвращают repository.ErrNotFound для отсутствующего id,
// Delete отсутствующего id не считает ошибкой.
type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	List(context.Context, task.ListFilter) ([]*task.Task, error)
	Update(context.Context, *task.Task) error
	Delete(context.Context, int64) error
}
