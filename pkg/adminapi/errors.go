package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotAuthenticated is returned when an authenticated call is attempted
	// without an access token.
	ErrNotAuthenticated = errors.New("adminapi: not authenticated")

	// ErrAuthenticationExpired is returned when the upstream rejects the
	// access token and the single refresh attempt could not produce a new
	// one. Callers should discard the session and re-authenticate.
	ErrAuthenticationExpired = errors.New("adminapi: authentication expired")

	// ErrResponseFormat is returned when a response arrives but its payload
	// matches none of the known shapes.
	ErrResponseFormat = errors.New("adminapi: unrecognised response format")

	// ErrAllApproachesFailed is returned when every login encoding attempt
	// completed without a diagnostic status.
	ErrAllApproachesFailed = errors.New("adminapi: all login approaches failed")
)

// TransportError wraps a network-level failure: the request never produced an
// HTTP response. Timeout distinguishes deadline exhaustion from other
// connectivity problems so the UI can word the failure accordingly.
type TransportError struct {
	Err     error
	Timeout bool
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("adminapi: request timed out: %v", e.Err)
	}
	return fmt.Sprintf("adminapi: request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a completed upstream response with a non-success status,
// carrying the best-effort message extracted from the body.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("adminapi: upstream returned %d: %s", e.StatusCode, e.Message)
}

// LoginRejectedError reports that the upstream understood the login request
// and turned it down. Distinct from ErrResponseFormat, which means the
// upstream appeared to accept the login but returned an unusable payload.
type LoginRejectedError struct {
	Message string
}

func (e *LoginRejectedError) Error() string {
	return fmt.Sprintf("adminapi: login rejected: %s", e.Message)
}

// newTransportError classifies err as a timeout or a general connectivity
// failure.
func newTransportError(err error) *TransportError {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if !timeout && errors.As(err, &netErr) {
		timeout = netErr.Timeout()
	}
	return &TransportError{Err: err, Timeout: timeout}
}

// extractMessage pulls a human-readable message out of an upstream body.
// The upstream is inconsistent about the field name.
func extractMessage(body []byte, fallback string) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	for _, key := range []string{"message", "error", "errorMessage", "title"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
