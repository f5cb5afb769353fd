package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
)

func (s *Store) ListTasks(ctx context.Context, userID string, filter task.StatusFilter) ([]task.Task, error) {
	q := `SELECT id, user_id, title, COALESCE(description, ''), is_completed, due_date, created_at, updated_at
	      FROM tasks WHERE user_id = $1`
	switch filter {
	case task.FilterPending:
		q += ` AND is_completed = FALSE`
	case task.FilterCompleted:
		q += ` AND is_completed = TRUE`
	}
	q += ` ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask looks a task up scoped to (id, user_id). A task owned by another
// user is indistinguishable from a missing one.
func (s *Store) GetTask(ctx context.Context, id, userID string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, COALESCE(description, ''), is_completed, due_date, created_at, updated_at
		 FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, userID string, req task.CreateRequest) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, due_date)
		 VALUES ($1, $2, NULLIF($3, ''), $4)
		 RETURNING id, user_id, title, COALESCE(description, ''), is_completed, due_date, created_at, updated_at`,
		userID, req.Title, req.Description, req.DueDate)

	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	row := s.pool.QueryRow(ctx,
		`UPDATE tasks SET title = $3, description = NULLIF($4, ''), is_completed = $5, due_date = $6, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`,
		t.ID, t.UserID, t.Title, t.Description, t.IsCompleted, t.DueDate)

	if err := row.Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update task %s: %w", t.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete task %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanTask(row scannable) (task.Task, error) {
	var t task.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.IsCompleted, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
