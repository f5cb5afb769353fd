package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/command"
	"github.com/bonsai-todo/bonsai/internal/domain/conversation"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
	"github.com/bonsai-todo/bonsai/internal/domain/user"
)

// fakeStore is an in-memory database.Store for service tests.
type fakeStore struct {
	mu            sync.Mutex
	seq           int
	users         map[string]*user.User
	tasks         map[string]*task.Task
	conversations map[string]*conversation.Conversation
	messages      []conversation.Message

	failNext error // returned by the next task write when set
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*user.User),
		tasks:         make(map[string]*task.Task),
		conversations: make(map[string]*conversation.Conversation),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) CreateUser(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", domain.ErrConflict)
		}
	}
	u.ID = f.nextID("u")
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", domain.ErrNotFound)
}

func (f *fakeStore) ListUsers(_ context.Context) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []user.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) ListTasks(_ context.Context, userID string, filter task.StatusFilter) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []task.Task
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		if filter == task.FilterPending && t.IsCompleted {
			continue
		}
		if filter == task.FilterCompleted && !t.IsCompleted {
			continue
		}
		out = append(out, *t)
	}
	// Stable order by id suffix for deterministic tests.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if strings.Compare(out[j].ID, out[i].ID) < 0 {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetTask(_ context.Context, id, userID string) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("get task: %w", domain.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) CreateTask(_ context.Context, userID string, req task.CreateRequest) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	t := &task.Task{
		ID:          f.nextID("t"),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.tasks[t.ID] = t
	cp := *t
	return &cp, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, t *task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	stored, ok := f.tasks[t.ID]
	if !ok || stored.UserID != t.UserID {
		return fmt.Errorf("update task: %w", domain.ErrNotFound)
	}
	t.UpdatedAt = time.Now()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteTask(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return fmt.Errorf("delete task: %w", domain.ErrNotFound)
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) CreateConversation(_ context.Context, c *conversation.Conversation) (*conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *c
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.conversations[created.ID] = &created
	cp := created
	return &cp, nil
}

func (f *fakeStore) GetConversation(_ context.Context, id, userID string) (*conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// The real store's uuid column rejects malformed ids before any row
	// lookup happens; surface the same non-NotFound failure.
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get conversation: invalid input syntax for type uuid: %q", id)
	}
	c, ok := f.conversations[id]
	if !ok || c.UserID != userID {
		return nil, fmt.Errorf("get conversation: %w", domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListConversations(_ context.Context, userID string) ([]conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []conversation.Conversation
	for _, c := range f.conversations {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteConversation(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("delete conversation: %w", domain.ErrNotFound)
	}
	delete(f.conversations, id)
	var kept []conversation.Message
	for _, m := range f.messages {
		if m.ConversationID != id {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

func (f *fakeStore) CreateMessage(_ context.Context, m *conversation.Message) (*conversation.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *m
	created.ID = f.nextID("m")
	created.CreatedAt = time.Now()
	f.messages = append(f.messages, created)
	cp := created
	return &cp, nil
}

func (f *fakeStore) ListMessages(_ context.Context, conversationID string) ([]conversation.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []conversation.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

// takeFailure consumes the queued write failure. Callers hold f.mu.
func (f *fakeStore) takeFailure() error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	return nil
}

// seedTask inserts a task directly into the store.
func (f *fakeStore) seedTask(userID, title string, completed bool) *task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &task.Task{
		ID:          f.nextID("t"),
		UserID:      userID,
		Title:       title,
		IsCompleted: completed,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.tasks[t.ID] = t
	cp := *t
	return &cp
}

// fixedInterpreter returns a canned command regardless of input.
type fixedInterpreter struct {
	cmd command.InterpretedCommand
}

func (f *fixedInterpreter) Interpret(_ context.Context, message string, _ []task.Task) command.InterpretedCommand {
	cmd := f.cmd
	cmd.OriginalText = message
	if cmd.SuggestedCLI == "" {
		cmd.SuggestedCLI = command.SuggestCLI(cmd)
	}
	return cmd
}
