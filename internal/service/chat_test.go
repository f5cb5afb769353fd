package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bonsai-todo/bonsai/internal/ai"
	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/command"
	"github.com/bonsai-todo/bonsai/internal/domain/conversation"
	"github.com/bonsai-todo/bonsai/internal/port/nlu"
)

const (
	lowThreshold  = 0.5
	highThreshold = 0.8
)

func newChat(store *fakeStore, interp Interpreter) *ChatService {
	tasks := NewTaskService(store, nil, nil, 0)
	return NewChatService(store, interp, NewExecutor(tasks), tasks, lowThreshold, highThreshold)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	s := newChat(newFakeStore(), &fixedInterpreter{})

	_, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestChatRejectsOversizedMessage(t *testing.T) {
	s := newChat(newFakeStore(), &fixedInterpreter{})

	_, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{
		Message: strings.Repeat("a", 2001),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestChatHighConfidenceExecutes(t *testing.T) {
	store := newFakeStore()
	s := newChat(store, &fixedInterpreter{cmd: command.InterpretedCommand{
		Action: command.ActionAdd, Confidence: 0.95, Title: "buy milk",
	}})

	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "remember to buy milk"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if resp.IsFallback || resp.NeedsConfirmation {
		t.Errorf("resp = %+v, want normal success shape", resp)
	}
	if resp.Task == nil || resp.Task.Title != "buy milk" {
		t.Errorf("task = %+v", resp.Task)
	}
	if !strings.Contains(resp.Message, "buy milk") {
		t.Errorf("message = %q", resp.Message)
	}

	tasks, _ := store.ListTasks(context.Background(), "u1", "")
	if len(tasks) != 1 {
		t.Errorf("stored tasks = %d, want 1", len(tasks))
	}
}

func TestChatMediumConfidenceAsksConfirmation(t *testing.T) {
	store := newFakeStore()
	s := newChat(store, &fixedInterpreter{cmd: command.InterpretedCommand{
		Action: command.ActionAdd, Confidence: 0.65, Title: "buy milk",
	}})

	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "maybe add milk?"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !resp.NeedsConfirmation || resp.IsFallback {
		t.Errorf("resp = %+v, want confirmation shape", resp)
	}
	if !strings.Contains(strings.ToLower(resp.Message), "confirm") {
		t.Errorf("message = %q, want explicit confirmation ask", resp.Message)
	}

	// Nothing was executed.
	tasks, _ := store.ListTasks(context.Background(), "u1", "")
	if len(tasks) != 0 {
		t.Errorf("stored tasks = %d, want 0", len(tasks))
	}
}

func TestChatLowConfidenceFallsBack(t *testing.T) {
	for _, action := range []command.Action{command.ActionAdd, command.ActionList, command.ActionComplete} {
		s := newChat(newFakeStore(), &fixedInterpreter{cmd: command.InterpretedCommand{
			Action: action, Confidence: 0.3, Title: "x", TaskID: "t-1",
		}})

		resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "mumble"})
		if err != nil {
			t.Fatalf("%s: ProcessMessage: %v", action, err)
		}
		if !resp.IsFallback {
			t.Errorf("%s: is_fallback = false below low threshold", action)
		}
		if resp.NeedsConfirmation {
			t.Errorf("%s: is_fallback and needs_confirmation are mutually exclusive", action)
		}
	}
}

func TestChatDeleteAlwaysConfirms(t *testing.T) {
	store := newFakeStore()
	seeded := store.seedTask("u1", "old report", false)
	s := newChat(store, &fixedInterpreter{cmd: command.InterpretedCommand{
		Action: command.ActionDelete, Confidence: 0.99, TaskID: seeded.ID, TaskReference: "old report",
	}})

	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "delete the old report"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !resp.NeedsConfirmation {
		t.Error("delete must always require confirmation")
	}
	if !strings.Contains(strings.ToLower(resp.Message), "cannot be undone") {
		t.Errorf("message = %q, want irreversibility notice", resp.Message)
	}
	if _, err := store.GetTask(context.Background(), seeded.ID, "u1"); err != nil {
		t.Error("task must not be deleted without confirmation")
	}
}

func TestChatUnknownActionFallsBack(t *testing.T) {
	s := newChat(newFakeStore(), &fixedInterpreter{cmd: command.InterpretedCommand{
		Action: command.ActionUnknown, Confidence: 0.9,
	}})

	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "how's the weather?"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !resp.IsFallback {
		t.Error("unknown action must fall back regardless of confidence")
	}
	if resp.SuggestedCLI != command.HelpCommand {
		t.Errorf("suggested CLI = %q", resp.SuggestedCLI)
	}
}

func TestChatCreatesConversationLazily(t *testing.T) {
	store := newFakeStore()
	s := newChat(store, &fixedInterpreter{cmd: command.InterpretedCommand{
		Action: command.ActionList, Confidence: 0.9,
	}})
	ctx := context.Background()

	resp, err := s.ProcessMessage(ctx, "u1", conversation.SendMessageRequest{Message: "show my tasks"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatal("expected a new conversation id")
	}

	// Second message into the same conversation.
	resp2, err := s.ProcessMessage(ctx, "u1", conversation.SendMessageRequest{
		Message: "show them again", ConversationID: resp.ConversationID,
	})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if resp2.ConversationID != resp.ConversationID {
		t.Errorf("conversation id changed: %q -> %q", resp.ConversationID, resp2.ConversationID)
	}

	msgs, _ := store.ListMessages(ctx, resp.ConversationID)
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4 (two turns)", len(msgs))
	}
	if msgs[0].Role != conversation.RoleUser || msgs[1].Role != conversation.RoleAssistant {
		t.Errorf("roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].GeneratedCommand == "" || msgs[1].ConfidenceScore == nil {
		t.Errorf("assistant message missing command metadata: %+v", msgs[1])
	}
}

func TestChatUnknownConversationIDStartsFresh(t *testing.T) {
	store := newFakeStore()
	s := newChat(store, &fixedInterpreter{cmd: command.InterpretedCommand{
		Action: command.ActionList, Confidence: 0.9,
	}})

	unknown := uuid.NewString()
	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{
		Message: "hello", ConversationID: unknown,
	})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if resp.ConversationID == "" || resp.ConversationID == unknown {
		t.Errorf("conversation id = %q, want a fresh one", resp.ConversationID)
	}
}

func TestChatMalformedConversationIDStartsFresh(t *testing.T) {
	store := newFakeStore()
	s := newChat(store, &fixedInterpreter{cmd: command.InterpretedCommand{
		Action: command.ActionList, Confidence: 0.9,
	}})

	// A non-uuid id must never reach the store, where it would fail with a
	// syntax error instead of a clean not-found.
	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{
		Message: "hello", ConversationID: "garbage",
	})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if resp.ConversationID == "" || resp.ConversationID == "garbage" {
		t.Errorf("conversation id = %q, want a fresh one", resp.ConversationID)
	}
	if _, err := uuid.Parse(resp.ConversationID); err != nil {
		t.Errorf("conversation id %q is not a uuid", resp.ConversationID)
	}
}

// timeoutProvider simulates a provider that always exceeds its deadline.
type timeoutProvider struct{}

func (timeoutProvider) Interpret(ctx context.Context, _ nlu.Prompt) (*nlu.Raw, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestChatProviderTimeoutNeverErrors(t *testing.T) {
	store := newFakeStore()
	interp := ai.NewInterpreter(timeoutProvider{}, 5*time.Millisecond)
	s := newChat(store, interp)

	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "add something"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v, provider timeout must not surface", err)
	}
	if !resp.IsFallback || resp.Confidence != 0.0 {
		t.Errorf("resp = %+v, want fallback with confidence 0", resp)
	}
	if resp.SuggestedCLI != command.HelpCommand {
		t.Errorf("suggested CLI = %q", resp.SuggestedCLI)
	}
	tasks, _ := store.ListTasks(context.Background(), "u1", "")
	if len(tasks) != 0 {
		t.Error("no task may be created on a timed-out interpretation")
	}
}

// cannedProvider returns a fixed raw interpretation.
type cannedProvider struct{ raw nlu.Raw }

func (p cannedProvider) Interpret(context.Context, nlu.Prompt) (*nlu.Raw, error) {
	raw := p.raw
	return &raw, nil
}

func TestChatAmbiguousReferenceAsksWhich(t *testing.T) {
	store := newFakeStore()
	store.seedTask("u1", "Buy groceries", false)
	store.seedTask("u1", "Groceries for party", false)

	interp := ai.NewInterpreter(cannedProvider{raw: nlu.Raw{
		Action: "complete", Confidence: 0.95, TaskReference: "groceries",
	}}, time.Second)
	s := newChat(store, interp)

	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "I finished the groceries"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !resp.IsFallback && !resp.NeedsConfirmation {
		t.Error("ambiguous reference must not execute")
	}
	m := strings.ToLower(resp.Message)
	if !strings.Contains(m, "specify") && !strings.Contains(m, "which") {
		t.Errorf("message = %q, want it to ask which task", resp.Message)
	}

	// Neither task was completed.
	tasks, _ := store.ListTasks(context.Background(), "u1", "completed")
	if len(tasks) != 0 {
		t.Error("no task may be completed on an ambiguous reference")
	}
}

func TestChatNoMatchReportsNotFound(t *testing.T) {
	store := newFakeStore()
	store.seedTask("u1", "Call dentist", false)

	interp := ai.NewInterpreter(cannedProvider{raw: nlu.Raw{
		Action: "complete", Confidence: 0.9, TaskReference: "laundry",
	}}, time.Second)
	s := newChat(store, interp)

	resp, err := s.ProcessMessage(context.Background(), "u1", conversation.SendMessageRequest{Message: "I did the laundry"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !strings.Contains(resp.Message, "couldn't find") {
		t.Errorf("message = %q, want not-found wording", resp.Message)
	}
}
