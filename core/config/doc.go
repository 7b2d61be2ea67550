// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file on first use (a missing file is not an error)
// and uses the caarlos0/env library for parsing environment variables into
// struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/memberportal/core/config"
//
//	type APIConfig struct {
//		BaseURL string        `env:"API_BASE_URL,required"`
//		Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
//	}
//
//	func main() {
//		var api APIConfig
//		if err := config.Load(&api); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&api)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per process. Different types
// are cached independently. Use Reset in tests that change the environment
// between loads.
package config
