// Package guard decides whether a requested view may render, must redirect,
// or has to wait until the session is known.
//
// Rules.Decide works on an in-memory session.State and never redirects
// before the state is hydrated. Rules.DecideCredential is the server-side
// variant: it only knows whether a transport credential (cookie) is present
// and therefore treats the session as always hydrated.
//
// Decisions are a UX convenience. The remote API re-validates the bearer
// token and permissions on every call.
package guard
