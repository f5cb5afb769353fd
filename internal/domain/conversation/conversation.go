// Package conversation defines the chat transcript domain model.
package conversation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
)

const (
	maxTitleLen   = 100
	maxContentLen = 2000
)

// Role identifies the author of a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation represents one chat session owned by a single user.
// Deleting a conversation cascades to its messages.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn in a conversation. Messages are append-only; they are
// never edited or deleted individually.
type Message struct {
	ID               string    `json:"id"`
	ConversationID   string    `json:"conversation_id"`
	Role             string    `json:"role"`
	Content          string    `json:"content"`
	GeneratedCommand string    `json:"generated_command,omitempty"`
	ConfidenceScore  *float64  `json:"confidence_score,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// TitleFromMessage derives a conversation title from its first message.
// Truncation backs up to a rune boundary so the title stays valid UTF-8.
func TitleFromMessage(content string) string {
	t := strings.TrimSpace(content)
	if len(t) <= maxTitleLen {
		return t
	}
	cut := maxTitleLen - 3
	for cut > 0 && !utf8.RuneStart(t[cut]) {
		cut--
	}
	return t[:cut] + "..."
}

// SendMessageRequest is the chat endpoint input.
type SendMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Validate enforces the 1-2000 character message bound.
func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if len(r.Message) > maxContentLen {
		return fmt.Errorf("%w: message must be at most %d characters", domain.ErrValidation, maxContentLen)
	}
	return nil
}

// ChatResponse is the chat endpoint output. Exactly one of the normal,
// confirmation-pending, or fallback shapes is active per response:
// needs_confirmation and is_fallback are never both true.
type ChatResponse struct {
	Message           string      `json:"message"`
	Confidence        float64     `json:"confidence"`
	Action            string      `json:"action"`
	SuggestedCLI      string      `json:"suggested_cli"`
	NeedsConfirmation bool        `json:"needs_confirmation"`
	IsFallback        bool        `json:"is_fallback"`
	ConversationID    string      `json:"conversation_id"`
	MessageID         string      `json:"message_id"`
	Task              *task.Task  `json:"task,omitempty"`
	Tasks             []task.Task `json:"tasks,omitempty"`
}
