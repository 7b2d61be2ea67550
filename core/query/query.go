package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/memberportal/core/cache"
	"github.com/dmitrymomot/memberportal/core/logger"
)

const keySep = ":"

// Client is a keyed cache of fetched values.
type Client struct {
	staleTime time.Duration
	maxSize   int
	logger    *slog.Logger
	now       func() time.Time
	entries   *cache.LRUCache[string, any]
	group     singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is one in-progress fetch. A stale flight still answers its waiters
// but its result is not stored.
type flight struct {
	stale bool
}

// Option configures a Client.
type Option func(*Client)

// WithStaleTime sets how long a fetched value is served from cache.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.staleTime = d
		}
	}
}

// WithMaxSize bounds the number of cached keys.
func WithMaxSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Client. Defaults: 30s stale time, 512 keys.
func New(opts ...Option) *Client {
	c := &Client{
		staleTime: 30 * time.Second,
		maxSize:   512,
		logger:    logger.Discard(),
		now:       time.Now,
		flights:   make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = cache.NewLRUCache[string, any](c.maxSize)
	c.entries.SetClock(c.now)
	return c
}

// Key joins parts into a cache key.
func Key(parts ...any) string {
	s := make([]string, 0, len(parts))
	for _, p := range parts {
		s = append(s, fmt.Sprint(p))
	}
	return strings.Join(s, keySep)
}

// Fetch returns the fresh cached value for key or calls fn and caches its result.
func Fetch[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.entries.Get(key); ok {
		t, ok := v.(T)
		if !ok {
			return zero, fmt.Errorf("%w: key %q", ErrTypeMismatch, key)
		}
		return t, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		f := c.begin(key)
		// The fetch outlives any single waiter; each waiter honors its own ctx.
		v, err := fn(context.WithoutCancel(ctx))
		c.finish(key, f, v, err)
		if err != nil {
			return nil, err
		}
		return v, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		c.logger.DebugContext(ctx, "query fetch failed", logger.QueryKey(key), logger.Error(res.Err))
		return zero, res.Err
	}
	if res.Shared {
		c.logger.DebugContext(ctx, "query fetch shared", logger.QueryKey(key))
	}

	t, ok := res.Val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q", ErrTypeMismatch, key)
	}
	return t, nil
}

func (c *Client) begin(key string) *flight {
	f := &flight{}
	c.mu.Lock()
	c.flights[key] = f
	c.mu.Unlock()
	return f
}

func (c *Client) finish(key string, f *flight, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flights[key] == f {
		delete(c.flights, key)
	}
	if err == nil && !f.stale {
		c.entries.PutWithTTL(key, v, c.staleTime)
	}
}

// Invalidate drops key and every key beneath it.
// Fetches for those keys that are still running will not store their results.
func (c *Client) Invalidate(prefix string) int {
	match := func(k string) bool {
		return k == prefix || strings.HasPrefix(k, prefix+keySep)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, f := range c.flights {
		if match(k) {
			f.stale = true
			delete(c.flights, k)
			c.group.Forget(k)
		}
	}
	return c.entries.RemoveFunc(func(k string, _ any) bool { return match(k) })
}

// Clear drops every cached value and detaches running fetches.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, f := range c.flights {
		f.stale = true
		delete(c.flights, k)
		c.group.Forget(k)
	}
	c.entries.Clear()
}

// Len returns the number of cached keys.
func (c *Client) Len() int {
	return c.entries.Len()
}
