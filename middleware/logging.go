package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/memberportal/core/logger"
)

// LoggingConfig configures Logging.
type LoggingConfig struct {
	// Skip bypasses logging, typically for health probes.
	Skip func(r *http.Request) bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// LogLevel for successful requests (default: Info).
	LogLevel slog.Level
	// SlowRequestThreshold logs slower requests at Warn (default: 5s).
	SlowRequestThreshold time.Duration
	// Component is attached to every entry (default: "http").
	Component string
}

// Logging writes one access log entry per request once the handler returns.
// 5xx responses log at Error, 4xx and slow requests at Warn.
func Logging(cfg LoggingConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			elapsed := time.Since(start)

			attrs := []slog.Attr{
				logger.Component(cfg.Component),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(rw.status),
				logger.BytesOut(rw.size),
				logger.Duration(elapsed),
				logger.ClientIP(r.RemoteAddr),
			}
			if id, ok := GetRequestID(r.Context()); ok {
				attrs = append(attrs, logger.RequestID(id))
			}
			if loc := rw.Header().Get("Location"); loc != "" && rw.status >= 300 && rw.status < 400 {
				attrs = append(attrs, slog.String("location", loc))
			}

			level := cfg.LogLevel
			switch {
			case rw.status >= 500:
				level = slog.LevelError
			case rw.status >= 400:
				level = slog.LevelWarn
			case elapsed > cfg.SlowRequestThreshold:
				level = slog.LevelWarn
				attrs = append(attrs, slog.Bool("slow_request", true))
			}

			cfg.Logger.LogAttrs(r.Context(), level, "http request", attrs...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	size        int64
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
