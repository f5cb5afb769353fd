// Package user defines the user domain model for authentication.
package user

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/bonsai-todo/bonsai/internal/domain"
)

// User represents a registered account. Every task and conversation in the
// system is owned by exactly one user.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest is the input for registering a new user.
type CreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	return nil
}

// LoginRequest is the input for user authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that the LoginRequest has all required fields.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	return nil
}

// LoginResponse is returned after successful authentication.
type LoginResponse struct {
	AccessToken string `json:"access_token"` //nolint:gosec // response field, not a hardcoded secret
	ExpiresIn   int    `json:"expires_in"`   // seconds until access token expires
	User        User   `json:"user"`
}

// TokenClaims contains the JWT payload fields.
type TokenClaims struct {
	UserID   string `json:"sub"`
	Email    string `json:"email"`
	IssuedAt int64  `json:"iat"`
	Expiry   int64  `json:"exp"`
	JTI      string `json:"jti"`
	Audience string `json:"aud"`
	Issuer   string `json:"iss"`
}
