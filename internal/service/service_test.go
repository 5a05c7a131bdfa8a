package service_test

import (
	"context"
	"errors"
	"taskManager/internal/models/task"
	"taskManager/internal/repository"
	"taskManager/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

func validFields() *task.Task {
	return &task.Task{
		Title:       "Задание1",
		Description: "Описание задания",
		DueDate:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		CreateDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:      task.StatusNotCompleted,
		Priority:    task.PriorityMedium,
		Category:    "work",
	}
}

func requireBusinessCode(t *testing.T, err error, code string) *service.BusinessError {
	t.Helper()
	busErr, ok := service.AsBusinessError(err)
	require.True(t, ok, "ожидалась BusinessError, получено %v", err)
	assert.Equal(t, code, busErr.Code)
	return busErr
}

// TestTaskService_HealthCheck тестирует HealthCheck
func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		repoErr     error
		expectError bool
	}{
		{name: "success - health check passes"},
		{name: "error - health check fails", repoErr: errors.New("db connection failed"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			mockRepo.On("HealthCheck", mock.Anything).Return(tt.repoErr)

			svc := service.NewTaskService(mockRepo)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.ErrorIs(t, err, tt.repoErr)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestValidateTask(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*task.Task)
		expectedField string
	}{
		{name: "valid", mutate: func(*task.Task) {}},
		{name: "empty title", mutate: func(t *task.Task) { t.Title = "" }, expectedField: "title"},
		{name: "blank title", mutate: func(t *task.Task) { t.Title = "   " }, expectedField: "title"},
		{name: "empty description", mutate: func(t *task.Task) { t.Description = "" }, expectedField: "description"},
		{name: "empty status", mutate: func(t *task.Task) { t.Status = "" }, expectedField: "status"},
		{name: "empty priority", mutate: func(t *task.Task) { t.Priority = "" }, expectedField: "priority"},
		{name: "empty category", mutate: func(t *task.Task) { t.Category = "" }, expectedField: "category"},
		{name: "zero due date", mutate: func(t *task.Task) { t.DueDate = time.Time{} }, expectedField: "due_date"},
		{name: "zero create date", mutate: func(t *task.Task) { t.CreateDate = time.Time{} }, expectedField: "create_date"},
		{name: "free-form status", mutate: func(t *task.Task) { t.Status = "выполнена" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(fields)

			err := service.ValidateTask(fields)
			if tt.expectedField == "" {
				assert.NoError(t, err)
				return
			}
			busErr := requireBusinessCode(t, err, service.CodeValidation)
			assert.Equal(t, tt.expectedField, busErr.Details["field"])
		})
	}
}

// TestTaskService_CreateTask тестирует создание задачи
func TestTaskService_CreateTask(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		fields := validFields()
		fields.ID = 77 // id от клиента игнорируется

		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return t.ID == 0 && t.Title == "Задание1" && t.Category == "work"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*task.Task).ID = 5
		}).Return(nil)

		svc := service.NewTaskService(mockRepo)
		id, err := svc.CreateTask(context.Background(), fields)

		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		mockRepo.AssertExpectations(t)
	})

	t.Run("validation error does not reach repository", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		fields := validFields()
		fields.Title = ""

		svc := service.NewTaskService(mockRepo)
		_, err := svc.CreateTask(context.Background(), fields)

		requireBusinessCode(t, err, service.CodeValidation)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		dbErr := errors.New("insert failed")
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(dbErr)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.CreateTask(context.Background(), validFields())

		assert.ErrorIs(t, err, dbErr)
		_, isBusiness := service.AsBusinessError(err)
		assert.False(t, isBusiness)
	})
}

// TestTaskService_GetTaskByID тестирует получение задачи
func TestTaskService_GetTaskByID(t *testing.T) {
	tests := []struct {
		name         string
		setupMock    func(*MockTaskRepository)
		expectedCode string
		expectError  bool
	}{
		{
			name: "success",
			setupMock: func(m *MockTaskRepository) {
				found := validFields()
				found.ID = 1
				m.On("GetByID", mock.Anything, int64(1)).Return(found, nil)
			},
		},
		{
			name: "not found",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetByID", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound)
			},
			expectedCode: service.CodeNotFound,
			expectError:  true,
		},
		{
			name: "repository error",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetByID", mock.Anything, int64(1)).Return(nil, errors.New("connection reset"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			found, err := svc.GetTaskByID(context.Background(), 1)

			if !tt.expectError {
				require.NoError(t, err)
				assert.Equal(t, int64(1), found.ID)
				return
			}

			require.Error(t, err)
			assert.Nil(t, found)
			if tt.expectedCode != "" {
				requireBusinessCode(t, err, tt.expectedCode)
				assert.ErrorIs(t, err, repository.ErrNotFound)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_UpdateTask тестирует полную замену
func TestTaskService_UpdateTask(t *testing.T) {
	existing := func() *task.Task {
		return &task.Task{
			ID:          3,
			Title:       "Старое",
			Description: "Старое описание",
			DueDate:     time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			CreateDate:  time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
			Status:      task.StatusCompleted,
			Priority:    task.PriorityLow,
			Category:    "home",
			CreatedAt:   time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC),
		}
	}

	t.Run("replaces all fields", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(3)).Return(existing(), nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			want := validFields()
			return t.ID == 3 &&
				t.Title == want.Title &&
				t.Description == want.Description &&
				t.DueDate.Equal(want.DueDate) &&
				t.CreateDate.Equal(want.CreateDate) &&
				t.Status == want.Status &&
				t.Priority == want.Priority &&
				t.Category == want.Category &&
				!t.CreatedAt.IsZero()
		})).Return(nil)

		svc := service.NewTaskService(mockRepo)
		require.NoError(t, svc.UpdateTask(context.Background(), 3, validFields()))
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing task is not created", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(3)).Return(nil, repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		err := svc.UpdateTask(context.Background(), 3, validFields())

		requireBusinessCode(t, err, service.CodeNotFound)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("deleted between read and write", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(3)).Return(existing(), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		err := svc.UpdateTask(context.Background(), 3, validFields())

		requireBusinessCode(t, err, service.CodeNotFound)
	})

	t.Run("validation error", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		fields := validFields()
		fields.Category = ""

		svc := service.NewTaskService(mockRepo)
		err := svc.UpdateTask(context.Background(), 3, fields)

		requireBusinessCode(t, err, service.CodeValidation)
		mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

// TestTaskService_DeleteTask тестирует удаление
func TestTaskService_DeleteTask(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Delete", mock.Anything, int64(999)).Return(nil)
	mockRepo.On("Delete", mock.Anything, int64(1)).Return(errors.New("db down"))

	svc := service.NewTaskService(mockRepo)

	assert.NoError(t, svc.DeleteTask(context.Background(), 999))
	assert.Error(t, svc.DeleteTask(context.Background(), 1))
	mockRepo.AssertExpectations(t)
}

// TestTaskService_ListTasks тестирует передачу фильтра в репозиторий
func TestTaskService_ListTasks(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	filter := task.ListFilter{Search: "Groc", Sort: task.SortDueDate}
	expected := []*task.Task{{ID: 1, Title: "Groceries"}}
	mockRepo.On("List", mock.Anything, filter).Return(expected, nil)

	svc := service.NewTaskService(mockRepo)
	tasks, err := svc.ListTasks(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, expected, tasks)

	failing := new(MockTaskRepository)
	failing.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	_, err = service.NewTaskService(failing).ListTasks(context.Background(), task.ListFilter{})
	assert.Error(t, err)
}
