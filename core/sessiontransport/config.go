package sessiontransport

import "time"

// Config provides environment-based configuration for session cookies.
type Config struct {
	// RecordCookie holds the encrypted persisted record (cookie-backed mode).
	RecordCookie string `env:"SESSION_RECORD_COOKIE" envDefault:"portal_session"`
	// SessionIDCookie holds the signed key into a Backend (keyed mode).
	SessionIDCookie string `env:"SESSION_ID_COOKIE" envDefault:"portal_sid"`
	// CredentialCookie carries the bearer token for the server-side guard.
	CredentialCookie string `env:"SESSION_CREDENTIAL_COOKIE" envDefault:"token"`
	// TTL bounds the lifetime of every session cookie.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}

// DefaultConfig returns a Config with the same values as the env defaults.
func DefaultConfig() Config {
	return Config{
		RecordCookie:     "portal_session",
		SessionIDCookie:  "portal_sid",
		CredentialCookie: "token",
		TTL:              7 * 24 * time.Hour,
	}
}

func (c Config) maxAge() int {
	if c.TTL <= 0 {
		return 0
	}
	return int(c.TTL.Seconds())
}
