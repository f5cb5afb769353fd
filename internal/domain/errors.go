// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a uniqueness violation, e.g. a duplicate email.
var ErrConflict = errors.New("conflict: resource already exists")

// ErrValidation indicates the request failed domain validation.
var ErrValidation = errors.New("validation failed")
