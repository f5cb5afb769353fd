// Package command defines the shared vocabulary of the natural-language
// pipeline: the fixed action set, confidence levels, the structured
// interpreted command, and the manual CLI suggestion grammar.
package command

import (
	"fmt"
	"strings"

	"github.com/bonsai-todo/bonsai/internal/domain/task"
)

// Action is one of the fixed command kinds the pipeline can produce.
type Action string

const (
	ActionAdd      Action = "add"
	ActionList     Action = "list"
	ActionComplete Action = "complete"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionUnknown  Action = "unknown"
)

// ParseAction maps a free-text provider token onto the fixed vocabulary.
// Unrecognized tokens map to ActionUnknown rather than failing.
func ParseAction(s string) Action {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "create", "new":
		return ActionAdd
	case "list", "show", "view":
		return ActionList
	case "complete", "done", "finish", "finished":
		return ActionComplete
	case "update", "edit", "change", "rename":
		return ActionUpdate
	case "delete", "remove":
		return ActionDelete
	default:
		return ActionUnknown
	}
}

// ConfidenceLevel partitions provider confidence into routing bands.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Level classifies a confidence value against the configured thresholds.
func Level(confidence, low, high float64) ConfidenceLevel {
	switch {
	case confidence >= high:
		return ConfidenceHigh
	case confidence >= low:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// CLIName is the manual command-line tool offered as an escape hatch in
// every suggestion.
const CLIName = "bonsai"

// TaskIDPlaceholder stands in for a task id when none could be resolved.
const TaskIDPlaceholder = "<task_id>"

// HelpCommand is the safe default suggestion.
const HelpCommand = CLIName + " help"

// InterpretedCommand is the immutable output of interpretation.
type InterpretedCommand struct {
	OriginalText          string            `json:"original_text"`
	Action                Action            `json:"action"`
	Confidence            float64           `json:"confidence"`
	SuggestedCLI          string            `json:"suggested_cli"`
	TaskID                string            `json:"task_id,omitempty"`
	TaskReference         string            `json:"task_reference,omitempty"`
	Title                 string            `json:"title,omitempty"`
	DueDate               string            `json:"due_date,omitempty"` // YYYY-MM-DD
	StatusFilter          task.StatusFilter `json:"status_filter,omitempty"`
	NeedsClarification    bool              `json:"needs_clarification,omitempty"`
	ClarificationQuestion string            `json:"clarification_question,omitempty"`
	MultipleMatches       []string          `json:"multiple_matches,omitempty"`
}

// ConfidenceLevel classifies the command against the given thresholds.
func (c InterpretedCommand) ConfidenceLevel(low, high float64) ConfidenceLevel {
	return Level(c.Confidence, low, high)
}

// IsExecutable reports whether the command needs no further disambiguation:
// list is always executable, add needs a title, and complete/update/delete
// need a resolved task id.
func (c InterpretedCommand) IsExecutable() bool {
	switch c.Action {
	case ActionList:
		return true
	case ActionAdd:
		return strings.TrimSpace(c.Title) != ""
	case ActionComplete, ActionDelete:
		return c.TaskID != ""
	case ActionUpdate:
		return c.TaskID != "" && (c.Title != "" || c.DueDate != "")
	default:
		return false
	}
}

// SuggestCLI builds the deterministic manual-command equivalent of the
// command. It is always resolvable: a missing task id becomes a placeholder.
func SuggestCLI(c InterpretedCommand) string {
	id := c.TaskID
	if id == "" {
		id = TaskIDPlaceholder
	}
	switch c.Action {
	case ActionAdd:
		title := c.Title
		if title == "" {
			title = "<title>"
		}
		return fmt.Sprintf("%s add %q", CLIName, title)
	case ActionList:
		switch c.StatusFilter {
		case task.FilterPending:
			return CLIName + " list --pending"
		case task.FilterCompleted:
			return CLIName + " list --completed"
		default:
			return CLIName + " list"
		}
	case ActionComplete:
		return fmt.Sprintf("%s complete %s", CLIName, id)
	case ActionUpdate:
		s := fmt.Sprintf("%s update %s", CLIName, id)
		if c.Title != "" {
			s += fmt.Sprintf(" --title %q", c.Title)
		}
		if c.DueDate != "" {
			s += " --due " + c.DueDate
		}
		return s
	case ActionDelete:
		return fmt.Sprintf("%s delete %s", CLIName, id)
	default:
		return HelpCommand
	}
}

// ExecutionResult is the outcome of executing a command. It never carries
// raw storage errors; action-level failures are data, not exceptions.
type ExecutionResult struct {
	Success      bool           `json:"success"`
	Action       Action         `json:"action"`
	Task         *task.Task     `json:"task,omitempty"`
	Tasks        []task.Task    `json:"tasks,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Failure builds a failed result for the given action.
func Failure(action Action, msg string) ExecutionResult {
	return ExecutionResult{Success: false, Action: action, ErrorMessage: msg}
}
