package portal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/memberportal/core/logger"
	"github.com/dmitrymomot/memberportal/core/response"
	"github.com/dmitrymomot/memberportal/core/session"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
	"github.com/dmitrymomot/memberportal/middleware"
)

type apiContextKey struct{}

// scopeAPI binds a client to the request's holder. A 401 from the API logs
// the session out and drops the bearer cookie.
func (app *App) scopeAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holder, ok := middleware.GetHolder(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		// Handlers may call the API concurrently; the writer is touched once.
		var once sync.Once
		api := app.api.With(
			apiclient.WithTokenSource(holder),
			apiclient.WithUnauthorizedHandler(func(ctx context.Context) {
				once.Do(func() {
					if u := holder.User(); u != nil {
						app.logger.InfoContext(ctx, "api rejected credential, logging out", logger.UserID(u.ID))
					}
					holder.Logout(context.WithoutCancel(ctx))
					app.credential.Clear(w)
				})
			}),
		)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), apiContextKey{}, api)))
	})
}

// syncCredential keeps the bearer cookie in step with the hydrated session.
// Without it a revoked session with a leftover cookie bounces between the
// login page and the home page, one guard redirecting to the other.
func (app *App) syncCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holder, ok := middleware.GetHolder(r.Context())
		if ok && holder.Hydrated() {
			present := app.credential.Present(r)
			st := holder.State()
			if st.IsAuthenticated && st.Token == "" {
				// A user without a bearer cannot reach the API; treat it as signed out.
				app.logger.WarnContext(r.Context(), "session has no bearer token, logging out", logger.UserID(st.User.ID))
				holder.Logout(r.Context())
				st = holder.State()
			}
			switch {
			case st.IsAuthenticated && !present:
				if err := app.credential.Set(w, st.Token); err != nil {
					app.logger.WarnContext(r.Context(), "failed to reissue credential cookie", logger.Error(err))
				}
			case !st.IsAuthenticated && present:
				app.credential.Clear(w)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// apiFor returns the request-scoped client, or the anonymous one.
func (app *App) apiFor(r *http.Request) *apiclient.Client {
	if api, ok := r.Context().Value(apiContextKey{}).(*apiclient.Client); ok {
		return api
	}
	return app.api
}

func holderFor(r *http.Request) (*session.Holder, error) {
	h, ok := middleware.GetHolder(r.Context())
	if !ok {
		return nil, response.ErrInternalServerError.WithMessage("session unavailable")
	}
	return h, nil
}

// currentUser returns the signed-in user; the view guard has already
// redirected anonymous requests on protected paths.
func currentUser(r *http.Request) (*session.User, error) {
	h, err := holderFor(r)
	if err != nil {
		return nil, err
	}
	u := h.User()
	if u == nil {
		return nil, response.ErrUnauthorized
	}
	return u, nil
}

func pathID(r *http.Request) apiclient.ID {
	return apiclient.ID(chi.URLParam(r, "id"))
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return response.ErrPayloadTooLarge
		case errors.Is(err, io.EOF):
			return response.ErrBadRequest.WithMessage("request body is empty")
		default:
			return response.ErrBadRequest.WithError(err)
		}
	}
	return nil
}
