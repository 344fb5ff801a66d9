package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error carries a backend-reported HTTP failure.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// TransportError means no response was received at all. It is never retried
// automatically.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot reach server: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func parseError(status int, payload []byte) *Error {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	message := ""
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &body); err == nil {
			if body.Error != "" {
				message = body.Error
			} else if body.Detail != "" {
				message = body.Detail
			}
		}
	}
	return &Error{StatusCode: status, Message: message}
}

// StatusOf reports the HTTP status carried by err, or 0 for transport errors
// and anything else.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// UserMessage maps an error to something a person can act on, preferring the
// backend-supplied message.
func UserMessage(err error, fallback string) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return "cannot reach server, check that the backend is running"
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusForbidden:
			return "you do not have permission to access this resource"
		case apiErr.StatusCode == http.StatusNotFound:
			return "resource not found"
		case strings.TrimSpace(apiErr.Message) != "":
			return apiErr.Message
		}
	}
	return fallback
}
