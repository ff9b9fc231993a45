package api

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying remote call failures so callers can pick the
// right fallback policy without inspecting status codes.
var (
	// ErrUnauthorized covers 401 and 403 responses: the bearer token is
	// missing, expired, revoked, or lacks the required capability.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrNotFound covers 404 responses.
	ErrNotFound = errors.New("api: not found")

	// ErrUnavailable covers transport failures and 5xx responses.
	ErrUnavailable = errors.New("api: backend unavailable")

	// ErrInvalidResponse indicates the backend returned a payload that does
	// not match the expected shape.
	ErrInvalidResponse = errors.New("api: invalid response")
)

// StatusError carries the raw status and any message the backend included in
// its error body. It always wraps one of the sentinel errors above.
type StatusError struct {
	Status  int
	Message string
	kind    error
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: backend error (%d)", e.Status)
}

// Unwrap exposes the sentinel classification.
func (e *StatusError) Unwrap() error { return e.kind }
