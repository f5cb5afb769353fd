// Package nlu defines the language-understanding provider port.
package nlu

import "context"

// Prompt is the provider request: a fixed system instruction plus the
// user's message rendered with task context.
type Prompt struct {
	System string
	User   string
}

// Raw is the provider's untrusted interpretation of a message. Fields are
// free-text tokens; normalization onto the fixed action vocabulary happens
// downstream.
type Raw struct {
	Action                string  `json:"action"`
	Confidence            float64 `json:"confidence"`
	TaskID                string  `json:"task_id,omitempty"`
	TaskReference         string  `json:"task_reference,omitempty"`
	Title                 string  `json:"title,omitempty"`
	DueDate               string  `json:"due_date,omitempty"`
	StatusFilter          string  `json:"status_filter,omitempty"`
	NeedsClarification    bool    `json:"needs_clarification,omitempty"`
	ClarificationQuestion string  `json:"clarification_question,omitempty"`
}

// Provider is the port interface for the external understanding provider.
// Implementations are treated as untrusted, possibly slow, possibly failing;
// callers bound every Interpret with a context deadline.
type Provider interface {
	Interpret(ctx context.Context, p Prompt) (*Raw, error)
}
