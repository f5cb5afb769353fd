// Package ai turns free-text chat messages into structured todo commands.
// It wraps the external understanding provider with a hard deadline and
// normalizes its untrusted output onto the fixed command vocabulary.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bonsai-todo/bonsai/internal/domain/command"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
	"github.com/bonsai-todo/bonsai/internal/port/nlu"
)

// Interpreter calls the provider under a deadline and produces an
// InterpretedCommand. Provider failures and timeouts never propagate: they
// degrade to an unknown-action command with confidence 0.
type Interpreter struct {
	provider nlu.Provider
	timeout  time.Duration

	now func() time.Time // injectable for tests
}

// NewInterpreter creates an interpreter. The timeout is enforced as a hard
// deadline on every provider call.
func NewInterpreter(provider nlu.Provider, timeout time.Duration) *Interpreter {
	return &Interpreter{
		provider: provider,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Interpret maps one user message onto a command, using the user's current
// tasks to resolve references. It always returns a usable command.
func (i *Interpreter) Interpret(ctx context.Context, message string, tasks []task.Task) command.InterpretedCommand {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	system, user := BuildPrompt(message, tasks, i.now())
	raw, err := i.provider.Interpret(ctx, nlu.Prompt{System: system, User: user})
	if err != nil {
		return i.degraded(message, err)
	}
	return i.normalize(message, raw, tasks)
}

// degraded builds the unknown-action command for a failed provider call.
func (i *Interpreter) degraded(message string, err error) command.InterpretedCommand {
	var fb FallbackResponse
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("interpreter timed out", "timeout", i.timeout)
		fb = TimeoutFallback()
	} else {
		slog.Warn("interpreter provider failed", "error", err)
		fb = UnavailableFallback()
	}
	return command.InterpretedCommand{
		OriginalText:          message,
		Action:                command.ActionUnknown,
		Confidence:            0.0,
		SuggestedCLI:          fb.SuggestedCLI,
		NeedsClarification:    true,
		ClarificationQuestion: fb.Message,
	}
}

// normalize maps the provider's free-text fields onto the fixed vocabulary
// and resolves task references against the user's tasks.
func (i *Interpreter) normalize(message string, raw *nlu.Raw, tasks []task.Task) command.InterpretedCommand {
	cmd := command.InterpretedCommand{
		OriginalText:          message,
		Action:                command.ParseAction(raw.Action),
		Confidence:            clamp(raw.Confidence),
		TaskID:                raw.TaskID,
		TaskReference:         raw.TaskReference,
		Title:                 raw.Title,
		DueDate:               ResolveDueDate(raw.DueDate, i.now()),
		StatusFilter:          task.ParseFilter(raw.StatusFilter),
		NeedsClarification:    raw.NeedsClarification,
		ClarificationQuestion: raw.ClarificationQuestion,
	}

	// A provider-supplied id only counts when it names one of the user's
	// own tasks.
	if cmd.TaskID != "" && !taskExists(tasks, cmd.TaskID) {
		cmd.TaskID = ""
	}

	if cmd.TaskID == "" && cmd.TaskReference != "" && needsTask(cmd.Action) {
		matches := MatchTasks(tasks, cmd.TaskReference)
		switch len(matches) {
		case 0:
			// Leave task_id unset; the executor reports not-found.
		case 1:
			cmd.TaskID = matches[0].ID
		default:
			for _, m := range matches {
				cmd.MultipleMatches = append(cmd.MultipleMatches, m.ID)
			}
			cmd.NeedsClarification = true
			cmd.ClarificationQuestion = fmt.Sprintf(
				"Multiple tasks match %q. Please specify which one you mean: %s.",
				cmd.TaskReference, titles(matches))
		}
	}

	cmd.SuggestedCLI = command.SuggestCLI(cmd)
	return cmd
}

func needsTask(a command.Action) bool {
	switch a {
	case command.ActionComplete, command.ActionUpdate, command.ActionDelete:
		return true
	default:
		return false
	}
}

func taskExists(tasks []task.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func titles(tasks []task.Task) string {
	s := ""
	for idx, t := range tasks {
		if idx > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%q", t.Title)
	}
	return s
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
