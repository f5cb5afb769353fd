package http

import (
	"net/http"

	"github.com/bonsai-todo/bonsai/internal/domain/conversation"
	"github.com/bonsai-todo/bonsai/internal/middleware"
)

// SendChatMessage handles POST /api/v1/chat. Provider problems come back as
// fallback responses inside a 200; only storage failures produce a 5xx.
func (h *Handlers) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	req, ok := readJSON[conversation.SendMessageRequest](w, r)
	if !ok {
		return
	}

	resp, err := h.chat.ProcessMessage(r.Context(), u.ID, req)
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListConversations handles GET /api/v1/conversations.
func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	convs, err := h.store.ListConversations(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err, "conversations not found")
		return
	}
	if convs == nil {
		convs = []conversation.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

// ListConversationMessages handles GET /api/v1/conversations/{id}/messages.
func (h *Handlers) ListConversationMessages(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	id := urlParam(r, "id")

	// Ownership check first; messages are not user-scoped themselves.
	if _, err := h.store.GetConversation(r.Context(), id, u.ID); err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}

	msgs, err := h.store.ListMessages(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	if msgs == nil {
		msgs = []conversation.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// DeleteConversation handles DELETE /api/v1/conversations/{id}.
func (h *Handlers) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())

	if err := h.store.DeleteConversation(r.Context(), urlParam(r, "id"), u.ID); err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
