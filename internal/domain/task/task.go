// Package task defines the Task domain entity.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/bonsai-todo/bonsai/internal/domain"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 4000
)

// StatusFilter narrows a task listing by completion state.
type StatusFilter string

const (
	FilterAll       StatusFilter = ""
	FilterPending   StatusFilter = "pending"
	FilterCompleted StatusFilter = "completed"
)

// ParseFilter maps a free-form filter token onto a StatusFilter.
// Unrecognized tokens mean no filtering.
func ParseFilter(s string) StatusFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "incomplete", "open", "active":
		return FilterPending
	case "completed", "complete", "done", "finished":
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Task represents a single todo item owned by one user.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a new task.
type CreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Validate checks title and description bounds.
func (r *CreateRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(r.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be at most %d characters", domain.ErrValidation, maxTitleLen)
	}
	if len(r.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be at most %d characters", domain.ErrValidation, maxDescriptionLen)
	}
	return nil
}

// UpdateRequest holds a partial update. Nil fields are left untouched;
// they are never nulled out on the stored task.
type UpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (r *UpdateRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.IsCompleted == nil && r.DueDate == nil
}

// Validate checks bounds on the provided fields only.
func (r *UpdateRequest) Validate() error {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" {
			return fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
		}
		if len(t) > maxTitleLen {
			return fmt.Errorf("%w: title must be at most %d characters", domain.ErrValidation, maxTitleLen)
		}
		*r.Title = t
	}
	if r.Description != nil && len(*r.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be at most %d characters", domain.ErrValidation, maxDescriptionLen)
	}
	return nil
}

// Apply copies the provided fields onto t and reports whether anything changed.
func (r *UpdateRequest) Apply(t *Task) bool {
	changed := false
	if r.Title != nil && *r.Title != t.Title {
		t.Title = *r.Title
		changed = true
	}
	if r.Description != nil && *r.Description != t.Description {
		t.Description = *r.Description
		changed = true
	}
	if r.IsCompleted != nil && *r.IsCompleted != t.IsCompleted {
		t.IsCompleted = *r.IsCompleted
		changed = true
	}
	if r.DueDate != nil {
		t.DueDate = r.DueDate
		changed = true
	}
	return changed
}
