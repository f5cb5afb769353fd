package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
	"github.com/bonsai-todo/bonsai/internal/port/cache"
	"github.com/bonsai-todo/bonsai/internal/port/database"
	"github.com/bonsai-todo/bonsai/internal/port/events"
)

// TaskService manages a user's tasks. Mutations publish lifecycle events and
// invalidate the per-user list cache; both are best-effort and never fail
// the operation.
type TaskService struct {
	store    database.Store
	queue    events.Queue // optional
	cache    cache.Cache  // optional
	cacheTTL time.Duration
}

// NewTaskService creates a task service. queue and cache may be nil.
func NewTaskService(store database.Store, queue events.Queue, c cache.Cache, cacheTTL time.Duration) *TaskService {
	return &TaskService{
		store:    store,
		queue:    queue,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// List returns the user's tasks, optionally narrowed by completion state.
func (s *TaskService) List(ctx context.Context, userID string, filter task.StatusFilter) ([]task.Task, error) {
	key := listCacheKey(userID, filter)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var tasks []task.Task
			if err := json.Unmarshal(data, &tasks); err == nil {
				return tasks, nil
			}
		}
	}

	tasks, err := s.store.ListTasks(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(tasks); err == nil {
			_ = s.cache.Set(ctx, key, data, s.cacheTTL)
		}
	}
	return tasks, nil
}

// Get returns one task scoped to its owner.
func (s *TaskService) Get(ctx context.Context, id, userID string) (*task.Task, error) {
	return s.store.GetTask(ctx, id, userID)
}

// Create stores a new task for the user.
func (s *TaskService) Create(ctx context.Context, userID string, req task.CreateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.store.CreateTask(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.publish(ctx, events.SubjectTaskCreated, t)
	return t, nil
}

// Update applies a partial update. At least one field must be provided;
// unspecified fields are left untouched.
func (s *TaskService) Update(ctx context.Context, id, userID string, req task.UpdateRequest) (*task.Task, error) {
	if req.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.store.GetTask(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !req.Apply(t) {
		return t, nil
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.publish(ctx, events.SubjectTaskUpdated, t)
	return t, nil
}

// Complete marks a task done. Completing an already-completed task is a
// no-op reported via alreadyCompleted; no write happens.
func (s *TaskService) Complete(ctx context.Context, id, userID string) (t *task.Task, alreadyCompleted bool, err error) {
	t, err = s.store.GetTask(ctx, id, userID)
	if err != nil {
		return nil, false, err
	}
	if t.IsCompleted {
		return t, true, nil
	}

	t.IsCompleted = true
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, false, err
	}

	s.invalidate(ctx, userID)
	s.publish(ctx, events.SubjectTaskCompleted, t)
	return t, false, nil
}

// Delete removes a task and returns its pre-deletion snapshot.
func (s *TaskService) Delete(ctx context.Context, id, userID string) (*task.Task, error) {
	t, err := s.store.GetTask(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteTask(ctx, id, userID); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.publish(ctx, events.SubjectTaskDeleted, t)
	return t, nil
}

func (s *TaskService) publish(ctx context.Context, subject string, t *task.Task) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(events.TaskEvent{TaskID: t.ID, UserID: t.UserID, Title: t.Title})
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("task event publish failed", "subject", subject, "error", err)
	}
}

func (s *TaskService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	for _, f := range []task.StatusFilter{task.FilterAll, task.FilterPending, task.FilterCompleted} {
		_ = s.cache.Delete(ctx, listCacheKey(userID, f))
	}
}

func listCacheKey(userID string, filter task.StatusFilter) string {
	return "tasks:" + userID + ":" + string(filter)
}
