package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config describes a token bucket: Capacity tokens at most, RefillRate tokens
// added every RefillInterval.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"30s"`
}

// Enabled reports whether the config describes a limit at all.
func (c Config) Enabled() bool {
	return c.Capacity > 0
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive", ErrInvalidConfig)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Store keeps bucket state per key. ConsumeTokens refills the bucket, takes
// tokens from it and returns what is left, which is negative when the
// request overdrew the bucket.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// Result is the outcome of one Allow call.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time

	now time.Time
}

// Allowed reports whether the request fit in the bucket.
func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long to wait before the next refill. Zero when allowed.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.now), 0)
}

// Bucket applies one Config to a Store.
type Bucket struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// BucketOption configures a Bucket.
type BucketOption func(*Bucket)

// WithBucketClock replaces time.Now when computing RetryAfter.
func WithBucketClock(now func() time.Time) BucketOption {
	return func(b *Bucket) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBucket validates cfg and returns a limiter over store.
func NewBucket(store Store, cfg Config, opts ...BucketOption) (*Bucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b := &Bucket{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Allow takes one token for key.
func (b *Bucket) Allow(ctx context.Context, key string) (Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN takes n tokens for key.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, ErrInvalidTokenCount
	}
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Limit:     b.cfg.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
		now:       b.now(),
	}, nil
}

// Reset forgets the state for key, e.g. after a successful sign-in.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
