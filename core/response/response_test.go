package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/memberportal/core/response"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.HTTPError {
	t.Helper()
	var body response.HTTPError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestJSON(t *testing.T) {
	t.Parallel()

	h := response.Handler(func(r *http.Request) response.Response {
		return response.JSON(map[string]string{"hello": "world"})
	})
	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestJSONWithStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        any
		status   int
		wantCode int
		wantBody string
	}{
		{"created", map[string]int{"id": 1}, http.StatusCreated, http.StatusCreated, `{"id":1}`},
		{"zero_status_with_data", []int{1}, 0, http.StatusOK, `[1]`},
		{"zero_status_nil", nil, 0, http.StatusNoContent, ``},
		{"no_content_drops_body", map[string]int{"id": 1}, http.StatusNoContent, http.StatusNoContent, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := response.Handler(func(r *http.Request) response.Response {
				return response.JSONWithStatus(tt.v, tt.status)
			})
			rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody == "" {
				assert.Empty(t, rec.Body.String())
			} else {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_NilResponse(t *testing.T) {
	t.Parallel()

	h := response.Handler(func(r *http.Request) response.Response { return nil })
	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"http_error", response.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrapped_http_error", fmt.Errorf("load: %w", response.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"status_coder", statusErr(http.StatusUnauthorized), http.StatusUnauthorized, "unauthorized"},
		{"unmapped_status_coder", statusErr(http.StatusTeapot), http.StatusTeapot, "error"},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := response.Handler(func(r *http.Request) response.Response {
				return response.Error(tt.err)
			})
			rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestHandler_CustomErrorHandler(t *testing.T) {
	t.Parallel()

	var got error
	h := response.Handler(
		func(r *http.Request) response.Response { return response.Error(response.ErrConflict) },
		response.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusTeapot)
		}),
	)
	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, response.ErrConflict)
}

func TestHTTPError_WithError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp 10.0.0.1:8000: connection refused")
	base := response.ErrBadGateway.WithDetails(map[string]any{"upstream": "api"})
	e := base.WithError(cause)

	assert.ErrorIs(t, e, cause)
	assert.ErrorIs(t, e, response.ErrBadGateway)
	assert.NotErrorIs(t, e, response.ErrBadRequest)
	assert.Equal(t, "api", e.Details["upstream"])
	assert.Equal(t, http.StatusBadGateway, e.StatusCode())
	assert.Equal(t, "custom: "+cause.Error(), e.WithMessage("custom").Error())

	rec := httptest.NewRecorder()
	response.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), e)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"code":"bad_gateway","message":"Bad Gateway","details":{"upstream":"api"}}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHTTPError_IsMatchesSentinels(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("create news: %w", response.ErrConflict.WithMessage("slug taken"))
	assert.ErrorIs(t, wrapped, response.ErrConflict)
	assert.NotErrorIs(t, wrapped, response.ErrNotFound)
	assert.NotErrorIs(t, wrapped, errors.New("Conflict"))
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	t.Run("browser", func(t *testing.T) {
		t.Parallel()

		h := response.Handler(func(r *http.Request) response.Response { return response.Redirect("/login") })
		rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("see_other", func(t *testing.T) {
		t.Parallel()

		h := response.Handler(func(r *http.Request) response.Response { return response.RedirectSeeOther("/") })
		rec := serve(t, h, httptest.NewRequest(http.MethodPost, "/logout", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("invalid_status_defaults_to_found", func(t *testing.T) {
		t.Parallel()

		h := response.Handler(func(r *http.Request) response.Response { return response.RedirectWithStatus("/x", 200) })
		rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("json_client", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Accept", "application/json")
		h := response.Handler(func(r *http.Request) response.Response { return response.Redirect("/login") })
		rec := serve(t, h, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get(response.HeaderLocation))
		assert.JSONEq(t, `{"redirect":"/login"}`, rec.Body.String())
	})
}

func TestDecorators(t *testing.T) {
	t.Parallel()

	t.Run("headers_and_cache", func(t *testing.T) {
		t.Parallel()

		resp := response.WithCache(response.WithHeaders(response.JSON("ok"), map[string]string{"X-Test": "1"}), time.Minute)
		h := response.Handler(func(r *http.Request) response.Response { return resp })
		rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "1", rec.Header().Get("X-Test"))
		assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	})

	t.Run("no_cache", func(t *testing.T) {
		t.Parallel()

		h := response.Handler(func(r *http.Request) response.Response { return response.WithCache(response.NoContent(), 0) })
		rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("before_error_stops_render", func(t *testing.T) {
		t.Parallel()

		h := response.Handler(func(r *http.Request) response.Response {
			return response.Before(response.JSON("ok"), func(http.ResponseWriter) error { return response.ErrBadGateway })
		})
		rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
