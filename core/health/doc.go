// Package health provides liveness and readiness handlers.
//
//	r.Get("/livez", response.Handler(health.Liveness))
//	r.Get("/healthz", response.Handler(health.Readiness(logger,
//		health.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//	)))
//
// Readiness runs every check concurrently and answers 503 with the failing
// checks listed when any of them errors.
package health
