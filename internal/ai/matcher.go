package ai

import (
	"strings"

	"github.com/bonsai-todo/bonsai/internal/domain/task"
)

// MatchTasks resolves a free-text task reference against the user's tasks by
// case-insensitive substring match on the title.
func MatchTasks(tasks []task.Task, reference string) []task.Task {
	ref := strings.ToLower(strings.TrimSpace(reference))
	if ref == "" {
		return nil
	}

	var matches []task.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), ref) {
			matches = append(matches, t)
		}
	}
	return matches
}
