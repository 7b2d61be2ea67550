package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when environment variables cannot be parsed into the target struct.
var ErrParsingConfig = errors.New("failed to parse config from environment")

var (
	dotenvOnce sync.Once

	mu    sync.RWMutex
	cache = make(map[reflect.Type]any)
)

// Load populates cfg from the environment. The first successful load of a
// type is cached and copied into cfg on later calls.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// .env is optional; real environment variables always win.
		_ = godotenv.Load()
	})

	typ := reflect.TypeFor[T]()

	mu.RLock()
	cached, ok := cache[typ]
	mu.RUnlock()
	if ok {
		*cfg = cached.(T)
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[typ]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, fmt.Errorf("%s: %w", typ, err))
	}

	cache[typ] = *cfg
	return nil
}

// MustLoad is like Load but panics on failure.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Reset drops every cached configuration.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clear(cache)
}
