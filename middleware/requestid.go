package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

// RequestIDConfig configures RequestID.
type RequestIDConfig struct {
	// Generator creates new ids (default: UUID v4).
	Generator func() string
	// HeaderName is the request and response header (default: "X-Request-ID").
	HeaderName string
	// UseExisting trusts an incoming id from HeaderName.
	UseExisting bool
}

// RequestID tags each request with an id, exposes it through GetRequestID and
// echoes it in the response header.
func RequestID(cfg RequestIDConfig) func(http.Handler) http.Handler {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cfg.UseExisting {
				id = r.Header.Get(cfg.HeaderName)
			}
			if id == "" || len(id) > 128 {
				id = cfg.Generator()
			}

			w.Header().Set(cfg.HeaderName, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDContextKey{}, id)))
		})
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}
