package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/memberportal/core/health"
	"github.com/dmitrymomot/memberportal/core/response"
)

func serve(fn response.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	response.Handler(fn)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	rec := serve(health.Liveness)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := health.Check{Name: "redis", Fn: func(context.Context) error { return nil }}
	bad := health.Check{Name: "api", Fn: func(context.Context) error { return errors.New("connection refused") }}

	t.Run("no_checks", func(t *testing.T) {
		rec := serve(health.Readiness(nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("all_pass", func(t *testing.T) {
		rec := serve(health.Readiness(nil, ok))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"redis":"ok"}}`, rec.Body.String())
	})

	t.Run("one_fails", func(t *testing.T) {
		rec := serve(health.Readiness(nil, ok, bad))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"api":"connection refused"`)
		assert.NotContains(t, rec.Body.String(), `"redis"`)
	})

	t.Run("check_gets_deadline", func(t *testing.T) {
		var hasDeadline bool
		rec := serve(health.Readiness(nil, health.Check{Name: "x", Fn: func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		}}))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, hasDeadline)
	})
}
