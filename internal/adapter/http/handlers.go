package http

import (
	"net/http"

	"github.com/bonsai-todo/bonsai/internal/port/database"
	"github.com/bonsai-todo/bonsai/internal/service"
)

// Handlers bundles the services the REST API dispatches to.
type Handlers struct {
	auth  *service.AuthService
	tasks *service.TaskService
	chat  *service.ChatService
	store database.Store

	// Optional health probes; nil probes are skipped.
	BreakerState  func() string
	QueueHealthy  func() bool
	WSConnections func() int
}

// NewHandlers creates the handler set.
func NewHandlers(auth *service.AuthService, tasks *service.TaskService, chat *service.ChatService, store database.Store) *Handlers {
	return &Handlers{
		auth:  auth,
		tasks: tasks,
		chat:  chat,
		store: store,
	}
}

// Health reports process liveness plus the state of optional dependencies.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.BreakerState != nil {
		body["ai_breaker"] = h.BreakerState()
	}
	if h.QueueHealthy != nil {
		body["queue_connected"] = h.QueueHealthy()
	}
	if h.WSConnections != nil {
		body["ws_connections"] = h.WSConnections()
	}
	writeJSON(w, http.StatusOK, body)
}
