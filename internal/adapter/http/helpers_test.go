package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bonsai-todo/bonsai/internal/domain"
)

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        fmt.Errorf("get task: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "task not found",
		},
		{
			name:       "conflict",
			err:        fmt.Errorf("create user: %w", domain.ErrConflict),
			wantStatus: http.StatusConflict,
			wantMsg:    "resource already exists",
		},
		{
			name:       "validation strips the sentinel prefix",
			err:        fmt.Errorf("%w: title is required", domain.ErrValidation),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "title is required",
		},
		{
			name:       "malformed uuid from the driver",
			err:        errors.New(`get conversation: invalid input syntax for type uuid: "garbage"`),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid identifier format",
		},
		{
			name:       "unexpected error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err, "task not found")

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tc.wantMsg {
				t.Errorf("message = %q, want %q", body.Error, tc.wantMsg)
			}
		})
	}
}
