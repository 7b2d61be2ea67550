// Package middleware provides net/http middleware for the portal: request ids,
// access logging, security headers, body limits, per-request session
// hydration and the two route guards.
//
// The order used by the portal server is:
//
//	r.Use(middleware.RequestID(middleware.RequestIDConfig{}))
//	r.Use(middleware.Logging(middleware.LoggingConfig{Logger: log}))
//	r.Use(middleware.SecurityHeaders(middleware.BalancedSecurity))
//	r.Use(middleware.BodyLimit(1 << 20))
//	r.Use(middleware.CredentialGuard(middleware.CredentialGuardConfig{Rules: rules, Credential: cred}))
//	r.Use(middleware.Session(middleware.SessionConfig{Stores: stores, Logger: log}))
//	r.Use(middleware.ViewGuard(middleware.ViewGuardConfig{Rules: rules}))
//
// CredentialGuard only checks that the bearer cookie is present and never
// reads the session record. ViewGuard evaluates the hydrated session and
// additionally enforces admin prefixes.
package middleware
