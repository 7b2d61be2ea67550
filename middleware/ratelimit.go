package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/memberportal/core/logger"
	"github.com/dmitrymomot/memberportal/core/response"
	"github.com/dmitrymomot/memberportal/pkg/ratelimiter"
)

// Limiter is satisfied by *ratelimiter.Bucket.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimiter.Result, error)
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	Limiter Limiter
	// Key picks the bucket for a request. Defaults to the client address,
	// which is the real client once chi's RealIP has run.
	Key    func(r *http.Request) string
	Logger *slog.Logger
}

// RateLimit rejects requests with 429 once their bucket is empty. Limiter
// errors let the request through.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Limiter == nil {
		panic("middleware: RateLimitConfig.Limiter is required")
	}
	if cfg.Key == nil {
		cfg.Key = clientAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.Key(r)
			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				cfg.Logger.ErrorContext(r.Context(), "rate limiter failed", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				retry := int(math.Ceil(res.RetryAfter().Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(retry, 1)))
				cfg.Logger.WarnContext(r.Context(), "rate limit exceeded",
					logger.Path(r.URL.Path), logger.ClientIP(key))
				response.WriteError(w, r, response.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
