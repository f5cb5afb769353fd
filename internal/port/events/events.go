// Package events defines the task event queue port.
package events

import "context"

// Subjects published on task mutations.
const (
	SubjectTaskCreated   = "tasks.created"
	SubjectTaskUpdated   = "tasks.updated"
	SubjectTaskCompleted = "tasks.completed"
	SubjectTaskDeleted   = "tasks.deleted"
)

// TaskEvent is the payload published on the tasks.> subjects. UserID routes
// the event to the owning user's live connections.
type TaskEvent struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

// Handler processes one message from a subject. Returning an error causes
// the message to be redelivered.
type Handler func(subject string, data []byte) error

// Queue is the port interface for publishing and consuming task lifecycle
// events.
type Queue interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(ctx context.Context, subject string, handler Handler) (func(), error)
}
