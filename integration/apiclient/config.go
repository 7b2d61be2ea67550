package apiclient

import "time"

// Config holds API client settings.
type Config struct {
	BaseURL   string        `env:"API_BASE_URL,required"`
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	UserAgent string        `env:"API_USER_AGENT" envDefault:"memberportal"`
}

// NewFromConfig creates a Client from cfg. Options override config values.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	base := []Option{WithTimeout(cfg.Timeout), WithUserAgent(cfg.UserAgent)}
	return New(cfg.BaseURL, append(base, opts...)...)
}
