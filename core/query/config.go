package query

import "time"

// Config holds query cache settings.
type Config struct {
	StaleTime time.Duration `env:"QUERY_STALE_TIME" envDefault:"30s"`
	MaxSize   int           `env:"QUERY_MAX_SIZE" envDefault:"512"`
}

// NewFromConfig creates a Client from cfg.
func NewFromConfig(cfg Config, opts ...Option) *Client {
	return New(append([]Option{WithStaleTime(cfg.StaleTime), WithMaxSize(cfg.MaxSize)}, opts...)...)
}
