package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/memberportal/core/health"
	"github.com/dmitrymomot/memberportal/core/response"
	"github.com/dmitrymomot/memberportal/integration/database/redis"
	"github.com/dmitrymomot/memberportal/middleware"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID(middleware.RequestIDConfig{}))
	r.Use(middleware.Logging(middleware.LoggingConfig{
		Logger: app.logger,
		Skip:   func(r *http.Request) bool { return r.URL.Path == "/healthz" || r.URL.Path == "/livez" },
	}))
	r.Use(middleware.SecurityHeaders(app.securityHeaders()))
	r.Use(middleware.BodyLimit(app.config.BodyLimit))

	r.NotFound(app.handle(func(*http.Request) response.Response { return response.Error(response.ErrNotFound) }))
	r.MethodNotAllowed(app.handle(func(*http.Request) response.Response {
		return response.Error(response.ErrMethodNotAllowed)
	}))

	r.Get("/livez", app.handle(health.Liveness))
	r.Get("/healthz", app.handle(health.Readiness(app.logger, app.healthChecks()...)))

	r.Group(func(r chi.Router) {
		r.Use(middleware.CredentialGuard(middleware.CredentialGuardConfig{Rules: app.rules, Credential: app.credential}))
		r.Use(middleware.Session(middleware.SessionConfig{Stores: app.stores, Logger: app.logger}))
		r.Use(app.syncCredential)
		r.Use(middleware.ViewGuard(middleware.ViewGuardConfig{Rules: app.rules, Logger: app.logger}))
		r.Use(app.scopeAPI)

		r.Get("/", app.handle(app.home))
		r.Get("/about", app.handle(app.about))
		r.Get("/gallery", app.handle(app.gallery))
		r.Get("/membership", app.handle(app.membership))
		r.Get("/advertisement", app.handle(app.advertisement))
		r.Get("/news", app.handle(app.listNews))
		r.Get("/news/{id}", app.handle(app.getNews))
		r.Get("/events", app.handle(app.listEvents))
		r.Get("/events/{id}", app.handle(app.getEvent))
		r.Get("/publications", app.handle(app.listPublications))
		r.Get("/publications/{id}", app.handle(app.getPublication))

		r.Get("/login", app.handle(app.loginPage))
		r.With(app.throttle).Post("/login", app.handle(app.login))
		r.With(app.throttle).Post("/register", app.handle(app.register))
		r.Post("/logout", app.handle(app.logout))

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", app.handle(app.dashboard))
			r.Get("/profile", app.handle(app.profile))
			r.Put("/profile", app.handle(app.updateProfile))
			r.Get("/payments", app.handle(app.myPayments))
			r.Post("/payments", app.handle(app.createPayment))
			r.Get("/publications", app.handle(app.myPublications))
			r.Post("/publications", app.handle(app.submitPublication))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", app.handle(app.adminOverview))

			r.Get("/publications", app.handle(app.adminPublications))
			r.Patch("/publications/{id}/status", app.handle(app.adminSetPublicationStatus))
			r.Delete("/publications/{id}", app.handle(app.adminDeletePublication))

			r.Post("/news", app.handle(app.adminCreateNews))
			r.Put("/news/{id}", app.handle(app.adminUpdateNews))
			r.Delete("/news/{id}", app.handle(app.adminDeleteNews))

			r.Post("/events", app.handle(app.adminCreateEvent))
			r.Put("/events/{id}", app.handle(app.adminUpdateEvent))
			r.Delete("/events/{id}", app.handle(app.adminDeleteEvent))

			r.Get("/members", app.handle(app.adminMembers))
			r.Put("/members/{id}", app.handle(app.adminUpdateMember))
			r.Delete("/members/{id}", app.handle(app.adminDeleteMember))

			r.Get("/payments", app.handle(app.adminPayments))
		})
	})

	return r
}

func (app *App) handle(fn response.HandlerFunc) http.HandlerFunc {
	return response.Handler(fn, response.WithLogger(app.logger))
}

// throttle applies the sign-in rate limit when one is configured.
func (app *App) throttle(next http.Handler) http.Handler {
	if app.limiter == nil {
		return next
	}
	return middleware.RateLimit(middleware.RateLimitConfig{Limiter: app.limiter, Logger: app.logger})(next)
}

func (app *App) healthChecks() []health.Check {
	if app.redis == nil {
		return nil
	}
	return []health.Check{{Name: "redis", Fn: redis.Healthcheck(app.redis)}}
}

func (app *App) securityHeaders() middleware.SecurityHeadersConfig {
	if app.config.IsDevelopment() {
		return middleware.DevelopmentSecurity
	}
	return middleware.BalancedSecurity
}
