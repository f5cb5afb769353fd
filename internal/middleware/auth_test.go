package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bonsai-todo/bonsai/internal/domain/user"
	"github.com/bonsai-todo/bonsai/internal/middleware"
)

type stubValidator struct {
	claims *user.TokenClaims
	err    error
}

func (s *stubValidator) ValidateAccessToken(string) (*user.TokenClaims, error) {
	return s.claims, s.err
}

func okHandler(t *testing.T, wantUserID string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := middleware.UserFromContext(r.Context())
		if u == nil {
			t.Fatal("expected user in context")
		}
		if wantUserID != "" && u.ID != wantUserID {
			t.Errorf("user ID = %q, want %q", u.ID, wantUserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_Disabled_InjectsDefaultUser(t *testing.T) {
	handler := middleware.Auth(nil, false)(okHandler(t, "00000000-0000-0000-0000-000000000000"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuth_Enabled_NoHeader_Returns401(t *testing.T) {
	handler := middleware.Auth(&stubValidator{}, true)(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_Enabled_ValidBearer(t *testing.T) {
	v := &stubValidator{claims: &user.TokenClaims{UserID: "u1", Email: "a@b.c"}}
	handler := middleware.Auth(v, true)(okHandler(t, "u1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", http.NoBody)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuth_Enabled_InvalidToken_Returns401(t *testing.T) {
	v := &stubValidator{err: errors.New("expired")}
	handler := middleware.Auth(v, true)(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", http.NoBody)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_PublicPathSkipped(t *testing.T) {
	called := false
	handler := middleware.Auth(&stubValidator{err: errors.New("nope")}, true)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Errorf("public path blocked: called=%v status=%d", called, rec.Code)
	}
}

func TestAuth_WebSocketTokenQuery(t *testing.T) {
	v := &stubValidator{claims: &user.TokenClaims{UserID: "u2", Email: "ws@b.c"}}
	handler := middleware.Auth(v, true)(okHandler(t, "u2"))

	req := httptest.NewRequest(http.MethodGet, "/ws?token=abc", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	// Missing token is rejected.
	req = httptest.NewRequest(http.MethodGet, "/ws", http.NoBody)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
