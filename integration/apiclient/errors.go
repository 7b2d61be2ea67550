package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingBaseURL = errors.New("apiclient: base URL is required")
	ErrInvalidBaseURL = errors.New("apiclient: invalid base URL")
	ErrEncodeRequest  = errors.New("apiclient: failed to encode request body")
	ErrDecodeResponse = errors.New("apiclient: failed to decode response body")
	ErrMissingID      = errors.New("apiclient: resource id is required")

	// Matched by *Error through errors.Is.
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	ErrForbidden    = errors.New("apiclient: forbidden")
	ErrNotFound     = errors.New("apiclient: not found")
)

// Error is a non-2xx response from the API.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Method  string `json:"-"`
	Path    string `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("apiclient: %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// StatusCode returns the HTTP status of the response.
func (e *Error) StatusCode() int {
	return e.Status
}

// Is reports whether the status matches one of the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IsUnauthorized reports whether err is an authentication rejection.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
