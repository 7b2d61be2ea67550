package response

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/memberportal/core/logger"
)

// Response renders itself into w.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc produces the response for a request.
type HandlerFunc func(r *http.Request) Response

// ErrorHandler renders an error returned while producing or writing a response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type handlerConfig struct {
	errorHandler ErrorHandler
	logger       *slog.Logger
}

// HandlerOption configures Handler.
type HandlerOption func(*handlerConfig)

// WithErrorHandler replaces the default JSON error handler.
func WithErrorHandler(h ErrorHandler) HandlerOption {
	return func(c *handlerConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithLogger logs server errors (status >= 500) before rendering them.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = l
	}
}

// Handler adapts fn to http.HandlerFunc.
func Handler(fn HandlerFunc, opts ...HandlerOption) http.HandlerFunc {
	cfg := handlerConfig{errorHandler: WriteError}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := fn(r)
		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := resp(w, r); err != nil {
			if cfg.logger != nil && toHTTPError(err).Status >= http.StatusInternalServerError {
				cfg.logger.ErrorContext(r.Context(), "request failed",
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.Error(err),
				)
			}
			cfg.errorHandler(w, r, err)
		}
	}
}

// Render writes resp and falls back to WriteError on failure.
func Render(w http.ResponseWriter, r *http.Request, resp Response) {
	if resp == nil {
		return
	}
	if err := resp(w, r); err != nil {
		WriteError(w, r, err)
	}
}

// NoContent responds 204 with no body.
func NoContent() Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// Error propagates err to the handler's error handler.
func Error(err error) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
