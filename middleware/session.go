package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/memberportal/core/guard"
	"github.com/dmitrymomot/memberportal/core/logger"
	"github.com/dmitrymomot/memberportal/core/response"
	"github.com/dmitrymomot/memberportal/core/session"
	"github.com/dmitrymomot/memberportal/core/sessiontransport"
)

type sessionContextKey struct{}

// SessionConfig configures Session.
type SessionConfig struct {
	// Stores binds a persisted store to each request. Required.
	Stores sessiontransport.StoreFactory
	// Logger is handed to every holder.
	Logger *slog.Logger
	// Skip bypasses hydration; the request gets no holder.
	Skip func(r *http.Request) bool
}

// Session gives every request its own session holder, hydrated from the
// request's store before the handler runs.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Stores == nil {
		panic("middleware: SessionConfig.Stores is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			holder := session.NewHolder(cfg.Stores(w, r), session.WithLogger(cfg.Logger))
			holder.Hydrate(r.Context())

			next.ServeHTTP(w, r.WithContext(WithHolder(r.Context(), holder)))
		})
	}
}

// WithHolder stores h in ctx.
func WithHolder(ctx context.Context, h *session.Holder) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, h)
}

// GetHolder returns the request's session holder.
func GetHolder(ctx context.Context) (*session.Holder, bool) {
	h, ok := ctx.Value(sessionContextKey{}).(*session.Holder)
	return h, ok && h != nil
}

// ViewGuardConfig configures ViewGuard.
type ViewGuardConfig struct {
	Rules  guard.Rules
	Logger *slog.Logger
}

// ViewGuard applies the route rules to the request's hydrated session.
// Requests without a holder are treated as not hydrated and get 204, so
// nothing protected is ever rendered for them.
func ViewGuard(cfg ViewGuardConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var st session.State
			if h, ok := GetHolder(r.Context()); ok {
				st = h.State()
			}

			d := cfg.Rules.Decide(r.URL.Path, st)
			switch d.Outcome {
			case guard.Render:
				next.ServeHTTP(w, r)
			case guard.Redirect:
				cfg.Logger.DebugContext(r.Context(), "view guard redirect",
					logger.Path(r.URL.Path), slog.String("target", d.Target), logger.Role(st.Role().String()))
				redirect(w, r, d.Target)
			default:
				w.WriteHeader(http.StatusNoContent)
			}
		})
	}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	status := http.StatusFound
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	response.Render(w, r, response.RedirectWithStatus(target, status))
}
