package handlers

import (
	"context"
	"taskManager/internal/models/task"
)

type Service interface {
	HealthCheck(context.Context) error
	ListTasks(context.Context, task.ListFilter) ([]*task.Task, error)
	CreateTask(context.Context, *task.Task) (int64, error)
	GetTaskByID(context.Context, int64) (*task.Task, error)
	UpdateTask(context.Context, int64, *task.Task) error
	DeleteTask(context.Context, int64) error
}
