package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bonsai-todo/bonsai/internal/adapter/otel"
	"github.com/bonsai-todo/bonsai/internal/ai"
	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/command"
	"github.com/bonsai-todo/bonsai/internal/domain/conversation"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
	"github.com/bonsai-todo/bonsai/internal/port/database"
)

// Interpreter turns a chat message into a structured command. It never
// fails; provider problems degrade to an unknown-action command.
type Interpreter interface {
	Interpret(ctx context.Context, message string, tasks []task.Task) command.InterpretedCommand
}

// ChatService orchestrates the chat pipeline: conversation handling,
// interpretation, confidence-threshold routing, execution, and persistence
// of both sides of the exchange.
type ChatService struct {
	store       database.Store
	interpreter Interpreter
	executor    *Executor
	tasks       *TaskService

	low  float64
	high float64
}

// NewChatService creates the orchestrator. low and high are the confidence
// cut points separating fallback, confirmation, and auto-execution.
func NewChatService(store database.Store, interp Interpreter, exec *Executor, tasks *TaskService, low, high float64) *ChatService {
	return &ChatService{
		store:       store,
		interpreter: interp,
		executor:    exec,
		tasks:       tasks,
		low:         low,
		high:        high,
	}
}

// ProcessMessage runs one chat turn for userID. Provider failures never
// surface as errors; only validation and storage problems do.
func (s *ChatService) ProcessMessage(ctx context.Context, userID string, req conversation.SendMessageRequest) (*conversation.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		conv      *conversation.Conversation
		userTasks []task.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		conv, err = s.resolveConversation(gctx, userID, req)
		return err
	})
	g.Go(func() error {
		var err error
		userTasks, err = s.tasks.List(gctx, userID, task.FilterAll)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if _, err := s.store.CreateMessage(ctx, &conversation.Message{
		ConversationID: conv.ID,
		Role:           conversation.RoleUser,
		Content:        req.Message,
	}); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	ictx, span := otel.StartInterpretSpan(ctx, conv.ID)
	cmd := s.interpreter.Interpret(ictx, req.Message, userTasks)
	span.End()

	resp, err := s.route(ctx, userID, cmd)
	if err != nil {
		return nil, err
	}
	resp.Confidence = cmd.Confidence
	resp.Action = string(cmd.Action)
	if resp.SuggestedCLI == "" {
		resp.SuggestedCLI = cmd.SuggestedCLI
	}
	resp.ConversationID = conv.ID

	confidence := cmd.Confidence
	assistant, err := s.store.CreateMessage(ctx, &conversation.Message{
		ConversationID:   conv.ID,
		Role:             conversation.RoleAssistant,
		Content:          resp.Message,
		GeneratedCommand: cmd.SuggestedCLI,
		ConfidenceScore:  &confidence,
	})
	if err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}
	resp.MessageID = assistant.ID

	return resp, nil
}

// resolveConversation loads the addressed conversation or lazily creates
// one. A malformed, unknown, or foreign conversation id silently starts a
// fresh conversation rather than failing the turn.
func (s *ChatService) resolveConversation(ctx context.Context, userID string, req conversation.SendMessageRequest) (*conversation.Conversation, error) {
	// A non-uuid id would fail in the store with a syntax error, not a
	// clean not-found; reject it here and start fresh instead.
	if _, err := uuid.Parse(req.ConversationID); err == nil {
		conv, err := s.store.GetConversation(ctx, req.ConversationID, userID)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return s.store.CreateConversation(ctx, &conversation.Conversation{
		UserID: userID,
		Title:  conversation.TitleFromMessage(req.Message),
	})
}

// route applies the confidence thresholds: fallback below low or on unknown,
// confirmation in the medium band or always for delete, execution otherwise.
func (s *ChatService) route(ctx context.Context, userID string, cmd command.InterpretedCommand) (*conversation.ChatResponse, error) {
	switch {
	case cmd.Action == command.ActionUnknown || cmd.Confidence < s.low:
		fb := ai.UnknownFallback(cmd.ClarificationQuestion)
		return &conversation.ChatResponse{
			Message:      fb.Message,
			SuggestedCLI: cmd.SuggestedCLI,
			IsFallback:   true,
		}, nil

	case len(cmd.MultipleMatches) > 0:
		return &conversation.ChatResponse{
			Message:      cmd.ClarificationQuestion,
			SuggestedCLI: cmd.SuggestedCLI,
			IsFallback:   true,
		}, nil

	case cmd.Action == command.ActionDelete || cmd.Confidence < s.high:
		return &conversation.ChatResponse{
			Message:           s.confirmationMessage(cmd),
			SuggestedCLI:      cmd.SuggestedCLI,
			NeedsConfirmation: true,
		}, nil

	default:
		ectx, span := otel.StartExecuteSpan(ctx, string(cmd.Action))
		result, err := s.executor.Execute(ectx, userID, cmd)
		span.End()
		if err != nil {
			return nil, err
		}
		resp := &conversation.ChatResponse{
			Message:      composeReply(cmd, result),
			SuggestedCLI: cmd.SuggestedCLI,
			Task:         result.Task,
			Tasks:        result.Tasks,
		}
		return resp, nil
	}
}

func (s *ChatService) confirmationMessage(cmd command.InterpretedCommand) string {
	if cmd.Action == command.ActionDelete {
		name := cmd.TaskReference
		if name == "" {
			name = "that task"
		}
		return fmt.Sprintf(
			"You're asking me to delete %q. Deleting a task cannot be undone. To confirm, run: %s",
			name, cmd.SuggestedCLI)
	}
	return fmt.Sprintf(
		"I think you want to %s, but I'm not fully sure. Please confirm by running: %s",
		cmd.Action, cmd.SuggestedCLI)
}

// composeReply turns an execution result into the assistant's message.
func composeReply(cmd command.InterpretedCommand, res command.ExecutionResult) string {
	if !res.Success {
		return res.ErrorMessage
	}

	switch cmd.Action {
	case command.ActionAdd:
		msg := fmt.Sprintf("I've added %q to your list.", res.Task.Title)
		if res.Task.DueDate != nil {
			msg += fmt.Sprintf(" It's due on %s.", res.Task.DueDate.Format("2006-01-02"))
		}
		return msg

	case command.ActionList:
		if len(res.Tasks) == 0 {
			return "You don't have any tasks here yet."
		}
		word := "tasks"
		if len(res.Tasks) == 1 {
			word = "task"
		}
		return fmt.Sprintf("You have %d %s.", len(res.Tasks), word)

	case command.ActionComplete:
		if res.Data != nil && res.Data["already_completed"] == true {
			return fmt.Sprintf("%q is already marked as complete.", res.Task.Title)
		}
		return fmt.Sprintf("I've marked %q as complete.", res.Task.Title)

	case command.ActionUpdate:
		if res.Data != nil {
			if old, ok := res.Data["old_title"].(string); ok {
				return fmt.Sprintf("I've renamed %q to %q.", old, res.Task.Title)
			}
		}
		return fmt.Sprintf("I've updated %q.", res.Task.Title)

	case command.ActionDelete:
		return fmt.Sprintf("I've deleted %q.", res.Task.Title)

	default:
		return "Done."
	}
}
