package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable wraps transport failures: refused connections, timeouts
	// and unreadable responses.
	ErrUnavailable = errors.New("backend.unavailable")

	ErrMissingToken = errors.New("backend.missing_token")
	ErrInvalidInput = errors.New("backend.invalid_input")
)

// Messages shown when the backend gives no reason for an auth failure.
const (
	LoginFailedMessage  = "Login failed. Please try again."
	SignupFailedMessage = "Signup failed. Please try again."
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// AuthError is returned by Login and Signup. Message is safe to show to the
// user: the server's message when it sent one, a generic one otherwise.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

func newAuthError(err error, fallback string) *AuthError {
	return &AuthError{Message: MessageOf(err, fallback), Err: err}
}

// MessageOf returns the server message carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// errorPayload accepts {"message": "..."} and {"message": ["...", "..."]}.
type errorPayload struct {
	Message json.RawMessage `json:"message"`
}

func decodeMessage(body []byte) string {
	var payload errorPayload
	if json.Unmarshal(body, &payload) != nil || len(payload.Message) == 0 {
		return ""
	}

	var single string
	if json.Unmarshal(payload.Message, &single) == nil {
		return single
	}
	var many []string
	if json.Unmarshal(payload.Message, &many) == nil {
		return strings.Join(many, "; ")
	}
	return ""
}
