package service

import (
	"context"
	"errors"
	"time"

	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/command"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
)

// Executor applies interpreted commands against one user's tasks.
// Action-level failures (not found, ambiguous input, missing fields) come
// back as data inside the ExecutionResult; only storage failures return an
// error.
type Executor struct {
	tasks *TaskService
}

// NewExecutor creates an executor backed by the task service.
func NewExecutor(tasks *TaskService) *Executor {
	return &Executor{tasks: tasks}
}

const notFoundMessage = "I couldn't find that task. Try listing your tasks to see what's there."

// Execute runs one command for userID.
func (e *Executor) Execute(ctx context.Context, userID string, cmd command.InterpretedCommand) (command.ExecutionResult, error) {
	switch cmd.Action {
	case command.ActionAdd:
		return e.add(ctx, userID, cmd)
	case command.ActionList:
		return e.list(ctx, userID, cmd)
	case command.ActionComplete:
		return e.complete(ctx, userID, cmd)
	case command.ActionUpdate:
		return e.update(ctx, userID, cmd)
	case command.ActionDelete:
		return e.delete(ctx, userID, cmd)
	default:
		return command.Failure(cmd.Action, "I don't know how to do that."), nil
	}
}

func (e *Executor) add(ctx context.Context, userID string, cmd command.InterpretedCommand) (command.ExecutionResult, error) {
	req := task.CreateRequest{Title: cmd.Title, DueDate: parseDueDate(cmd.DueDate)}
	t, err := e.tasks.Create(ctx, userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return command.Failure(cmd.Action, "A task needs a title. What should I call it?"), nil
		}
		return command.ExecutionResult{}, err
	}
	return command.ExecutionResult{Success: true, Action: cmd.Action, Task: t}, nil
}

func (e *Executor) list(ctx context.Context, userID string, cmd command.InterpretedCommand) (command.ExecutionResult, error) {
	tasks, err := e.tasks.List(ctx, userID, cmd.StatusFilter)
	if err != nil {
		return command.ExecutionResult{}, err
	}
	return command.ExecutionResult{Success: true, Action: cmd.Action, Tasks: tasks}, nil
}

func (e *Executor) complete(ctx context.Context, userID string, cmd command.InterpretedCommand) (command.ExecutionResult, error) {
	if cmd.TaskID == "" {
		return command.Failure(cmd.Action, notFoundMessage), nil
	}
	t, already, err := e.tasks.Complete(ctx, cmd.TaskID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return command.Failure(cmd.Action, notFoundMessage), nil
		}
		return command.ExecutionResult{}, err
	}

	res := command.ExecutionResult{Success: true, Action: cmd.Action, Task: t}
	if already {
		res.Data = map[string]any{"already_completed": true}
	}
	return res, nil
}

func (e *Executor) update(ctx context.Context, userID string, cmd command.InterpretedCommand) (command.ExecutionResult, error) {
	if cmd.TaskID == "" {
		return command.Failure(cmd.Action, notFoundMessage), nil
	}
	if cmd.Title == "" && cmd.DueDate == "" {
		return command.Failure(cmd.Action, "Please specify what to update: a new title or a due date."), nil
	}

	req := task.UpdateRequest{}
	if cmd.Title != "" {
		title := cmd.Title
		req.Title = &title
	}
	if due := parseDueDate(cmd.DueDate); due != nil {
		req.DueDate = due
	}

	old, err := e.tasks.Get(ctx, cmd.TaskID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return command.Failure(cmd.Action, notFoundMessage), nil
		}
		return command.ExecutionResult{}, err
	}
	oldTitle := old.Title

	t, err := e.tasks.Update(ctx, cmd.TaskID, userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return command.Failure(cmd.Action, notFoundMessage), nil
		}
		if errors.Is(err, domain.ErrValidation) {
			return command.Failure(cmd.Action, "Please specify what to update: a new title or a due date."), nil
		}
		return command.ExecutionResult{}, err
	}

	res := command.ExecutionResult{Success: true, Action: cmd.Action, Task: t}
	if req.Title != nil && oldTitle != t.Title {
		res.Data = map[string]any{"old_title": oldTitle}
	}
	return res, nil
}

func (e *Executor) delete(ctx context.Context, userID string, cmd command.InterpretedCommand) (command.ExecutionResult, error) {
	if cmd.TaskID == "" {
		return command.Failure(cmd.Action, notFoundMessage), nil
	}
	t, err := e.tasks.Delete(ctx, cmd.TaskID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return command.Failure(cmd.Action, notFoundMessage), nil
		}
		return command.ExecutionResult{}, err
	}
	return command.ExecutionResult{Success: true, Action: cmd.Action, Task: t}, nil
}

// parseDueDate turns an absolute YYYY-MM-DD string into a time, or nil when
// absent or malformed.
func parseDueDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
