// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/bonsai-todo/bonsai/internal/domain/conversation"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
	"github.com/bonsai-todo/bonsai/internal/domain/user"
)

// Store is the port interface for database operations. Every task and
// conversation query is scoped by user id; no unscoped query exists.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)

	// Tasks
	ListTasks(ctx context.Context, userID string, filter task.StatusFilter) ([]task.Task, error)
	GetTask(ctx context.Context, id, userID string) (*task.Task, error)
	CreateTask(ctx context.Context, userID string, req task.CreateRequest) (*task.Task, error)
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id, userID string) error

	// Conversations
	CreateConversation(ctx context.Context, c *conversation.Conversation) (*conversation.Conversation, error)
	GetConversation(ctx context.Context, id, userID string) (*conversation.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]conversation.Conversation, error)
	DeleteConversation(ctx context.Context, id, userID string) error
	CreateMessage(ctx context.Context, m *conversation.Message) (*conversation.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]conversation.Message, error)
}
