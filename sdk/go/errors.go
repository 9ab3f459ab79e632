package invader

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by the SDK.
var (
	// ErrUnauthorized is returned when the backend rejects the bearer
	// token. The session is invalidated before this is returned.
	ErrUnauthorized = errors.New("invader: unauthorized")

	// ErrTemplateNotFound is returned when deleting a template the
	// catalog no longer has.
	ErrTemplateNotFound = errors.New("invader: template not found")
)

// ValidationError reports input the SDK rejected before any network
// call was made.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// APIError is a structured error response from the backend. Trace
// carries any diagnostic text the backend attached; it is preserved
// verbatim for display.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Trace      string `json:"trace,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("invader: API error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

func parseAPIError(statusCode int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		apiErr.StatusCode = statusCode
		return &apiErr
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    string(body),
	}
}

// IsAPIError checks whether err is an APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
