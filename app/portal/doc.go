// Package portal is the member portal's HTTP surface.
//
// Every request passes the credential guard (bearer cookie presence), gets its
// own session.Holder hydrated from the configured store, and is then checked by
// the view guard. Handlers call the remote API through a client bound to that
// holder, so a 401 from the API logs the request's session out.
//
// Public listings are cached through core/query with the anonymous client;
// admin mutations invalidate the matching key prefix.
package portal
