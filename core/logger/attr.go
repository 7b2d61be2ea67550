package logger

import (
	"log/slog"
	"time"
)

// Empty-valued helpers return a zero Attr, which slog drops, so callers can
// pass optional values without checking them first.

// Error is the error under "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed is the time since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// UserID is the id of the signed-in member.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Role is the session role (member or admin).
func Role(role string) slog.Attr {
	if role == "" {
		return slog.Attr{}
	}
	return slog.String("role", role)
}

func Method(method string) slog.Attr {
	return slog.String("method", method)
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// URL is an outbound request URL. Pass a redacted form; userinfo is not stripped here.
func URL(u string) slog.Attr {
	if u == "" {
		return slog.Attr{}
	}
	return slog.String("url", u)
}

func ClientIP(ip string) slog.Attr {
	return slog.String("client_ip", ip)
}

func BytesOut(n int64) slog.Attr {
	return slog.Int64("bytes_out", n)
}

// QueryKey is a query cache key.
func QueryKey(key string) slog.Attr {
	return slog.String("query_key", key)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Action(action string) slog.Attr {
	return slog.String("action", action)
}

// Key is a free-form attribute; nil values are dropped.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}
