package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx response from the server.
type HTTPError struct {
	StatusCode int
	// Type is the server's error type (X-Error-Type), e.g. "dimension_mismatch".
	Type    string
	Message string
	Body    string
}

func newHTTPError(resp *http.Response, body []byte) *HTTPError {
	e := &HTTPError{
		StatusCode: resp.StatusCode,
		Type:       resp.Header.Get("X-Error-Type"),
		Body:       string(body),
	}
	var payload struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if e.Type == "" {
			e.Type = payload.Type
		}
		e.Message = payload.Message
	}
	return e
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("life: HTTP %d: %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("life: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsUnauthorized returns true when the token was missing or rejected.
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsRetryable returns true for timeouts, rate limits and server errors.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}
