package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/memberportal/core/logger"
	"github.com/dmitrymomot/memberportal/core/response"
)

// DefaultTimeout bounds each readiness check.
const DefaultTimeout = 2 * time.Second

// Check is one named dependency probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

type status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Liveness reports that the process is serving requests. It checks nothing.
func Liveness(*http.Request) response.Response {
	return response.WithCache(response.JSON(status{Status: "ok"}), 0)
}

// Readiness returns a handler that runs checks, each bounded by DefaultTimeout.
func Readiness(log *slog.Logger, checks ...Check) response.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}

	return func(r *http.Request) response.Response {
		if len(checks) == 0 {
			return response.WithCache(response.JSON(status{Status: "ok"}), 0)
		}

		results := make(map[string]string, len(checks))
		failed := make(map[string]any)
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, c := range checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(r.Context(), DefaultTimeout)
				defer cancel()
				err := c.Fn(ctx)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					log.ErrorContext(r.Context(), "readiness check failed",
						logger.Component("health"), logger.Key("check", c.Name), logger.Error(err))
					failed[c.Name] = err.Error()
					return
				}
				results[c.Name] = "ok"
			}()
		}
		wg.Wait()

		if len(failed) > 0 {
			return response.Error(response.ErrServiceUnavailable.WithDetails(failed))
		}
		return response.WithCache(response.JSON(status{Status: "ok", Checks: results}), 0)
	}
}
