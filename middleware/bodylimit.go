package middleware

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/memberportal/core/response"
)

// BodyLimit rejects bodies larger than maxBytes with 413. Declared lengths are
// checked up front; undeclared ones are capped with http.MaxBytesReader.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 4 << 20
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				response.WriteError(w, r, response.ErrPayloadTooLarge.
					WithMessage(fmt.Sprintf("request body too large, limit is %d bytes", maxBytes)).
					WithDetails(map[string]any{"limit": maxBytes, "size": r.ContentLength}))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
