package http

import (
	"errors"
	"net/http"

	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/user"
	"github.com/bonsai-todo/bonsai/internal/middleware"
)

// Register handles POST /api/v1/auth/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.CreateRequest](w, r)
	if !ok {
		return
	}

	u, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Login handles POST /api/v1/auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.LoginRequest](w, r)
	if !ok {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeDomainError(w, err, "")
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/v1/auth/me.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	authed := middleware.UserFromContext(r.Context())
	if authed == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}

	u, err := h.auth.GetUser(r.Context(), authed.ID)
	if err != nil {
		// The dev-mode default user has no row; answer from the claims.
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, authed)
			return
		}
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
