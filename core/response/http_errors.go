package response

import (
	"errors"
	"net/http"
)

// HTTPError is a structured error response.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	cause error
}

// NewHTTPError creates a 500 error with message.
func NewHTTPError(message string) HTTPError {
	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_server_error",
		Message: message,
	}
}

// Error implements the error interface. The cause is included for logs only;
// the rendered body carries Message.
func (e HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the cause attached with WithError.
func (e HTTPError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an HTTPError with the same status and code.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Code == t.Code
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy carrying err as its cause.
// The cause is never written to the response body.
func (e HTTPError) WithError(err error) HTTPError {
	e.cause = err
	return e
}

func newHTTPError(status int, code string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: http.StatusText(status)}
}

var (
	ErrBadRequest          = newHTTPError(http.StatusBadRequest, "bad_request")
	ErrUnauthorized        = newHTTPError(http.StatusUnauthorized, "unauthorized")
	ErrForbidden           = newHTTPError(http.StatusForbidden, "forbidden")
	ErrNotFound            = newHTTPError(http.StatusNotFound, "not_found")
	ErrMethodNotAllowed    = newHTTPError(http.StatusMethodNotAllowed, "method_not_allowed")
	ErrConflict            = newHTTPError(http.StatusConflict, "conflict")
	ErrPayloadTooLarge     = newHTTPError(http.StatusRequestEntityTooLarge, "payload_too_large")
	ErrUnprocessableEntity = newHTTPError(http.StatusUnprocessableEntity, "unprocessable_entity")
	ErrTooManyRequests     = newHTTPError(http.StatusTooManyRequests, "too_many_requests")
	ErrInternalServerError = newHTTPError(http.StatusInternalServerError, "internal_server_error")
	ErrBadGateway          = newHTTPError(http.StatusBadGateway, "bad_gateway")
	ErrServiceUnavailable  = newHTTPError(http.StatusServiceUnavailable, "service_unavailable")
	ErrGatewayTimeout      = newHTTPError(http.StatusGatewayTimeout, "gateway_timeout")
)

var httpErrorsByStatus = map[int]HTTPError{
	http.StatusBadRequest:            ErrBadRequest,
	http.StatusUnauthorized:          ErrUnauthorized,
	http.StatusForbidden:             ErrForbidden,
	http.StatusNotFound:              ErrNotFound,
	http.StatusMethodNotAllowed:      ErrMethodNotAllowed,
	http.StatusConflict:              ErrConflict,
	http.StatusRequestEntityTooLarge: ErrPayloadTooLarge,
	http.StatusUnprocessableEntity:   ErrUnprocessableEntity,
	http.StatusTooManyRequests:       ErrTooManyRequests,
	http.StatusInternalServerError:   ErrInternalServerError,
	http.StatusBadGateway:            ErrBadGateway,
	http.StatusServiceUnavailable:    ErrServiceUnavailable,
	http.StatusGatewayTimeout:        ErrGatewayTimeout,
}

type statusCoder interface {
	StatusCode() int
}

func toHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		if status >= 400 && status < 600 {
			base = newHTTPError(status, "error")
		} else {
			base = ErrInternalServerError
		}
	}
	return base.WithError(err)
}

// WriteError renders err as a JSON HTTPError.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := toHTTPError(err)
	_ = JSONWithStatus(httpErr, httpErr.Status)(w, r)
}
