package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/bonsai-todo/bonsai/internal/domain/task"
)

const systemPrompt = `You are the command interpreter for a todo application.
Map the user's message onto exactly one action: add, list, complete, update, delete, or unknown.

Respond with a single JSON object, no prose:
{
  "action": "add|list|complete|update|delete|unknown",
  "confidence": 0.0-1.0,
  "task_id": "exact id when the user named a task in the list",
  "task_reference": "the user's own words for the task when no id is certain",
  "title": "new task title (add) or replacement title (update)",
  "due_date": "YYYY-MM-DD, or a phrase like tomorrow / next week",
  "status_filter": "pending|completed when the user narrows a list",
  "needs_clarification": true when the request is ambiguous,
  "clarification_question": "a short question to resolve the ambiguity"
}

Rules:
- confidence reflects how certain you are of both the action and its parameters.
- Never invent task ids. Use task_reference when unsure which task is meant.
- For greetings, questions, or anything that is not a task command, use action unknown.`

// BuildPrompt renders the provider request for one user message, embedding
// today's date and the user's current tasks so references can be grounded.
func BuildPrompt(message string, tasks []task.Task, now time.Time) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's date: %s\n\n", now.Format(dateLayout))

	if len(tasks) == 0 {
		b.WriteString("The user has no tasks.\n")
	} else {
		b.WriteString("Current tasks:\n")
		for _, t := range tasks {
			status := "pending"
			if t.IsCompleted {
				status = "completed"
			}
			fmt.Fprintf(&b, "- id=%s title=%q status=%s", t.ID, t.Title, status)
			if t.DueDate != nil {
				fmt.Fprintf(&b, " due=%s", t.DueDate.Format(dateLayout))
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nUser message: %s", message)
	return systemPrompt, b.String()
}
