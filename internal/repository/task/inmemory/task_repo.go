package inmemory

import (
	"context"
	"sort"
	"sync"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"
	"time"
)

// TaskStorage хранит копии задач, вызывающий код не может изменить их в обход Update
type TaskStorage struct {
	storage map[int64]task.Task
	mtx     *sync.RWMutex
	lastID  int64
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]task.Task),
		mtx:     &sync.RWMutex{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// id не переиспользуются даже после удаления
	s.lastID++
	now := s.now()

	taskToCreate.ID = s.lastID
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	s.storage[taskToCreate.ID] = *taskToCreate
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	existed.Replace(taskToUpdate)
	existed.UpdatedAt = s.now()
	s.storage[existed.ID] = existed

	*taskToUpdate = existed
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &taskToGet, nil
}

// удаление отсутствующей задачи не ошибка
func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.storage, id)
	return nil
}

func (s *TaskStorage) List(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.storage))
	for _, stored := range s.storage {
		if !filter.Matches(&stored) {
			continue
		}
		t := stored
		res = append(res, &t)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return filter.Less(res[i], res[j])
	})
	return res, nil
}
