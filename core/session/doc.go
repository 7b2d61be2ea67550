// Package session holds the authenticated-session state of one browser
// context: who is logged in, with which bearer token, and whether the
// persisted copy has been read yet.
//
// A Holder owns the in-memory state and mirrors every change into a Store.
// Construct one Holder per browser context and pass it to the components
// that need it:
//
//	h := session.NewHolder(session.NewFileStore(path), session.WithLogger(log))
//	<-h.HydrateAsync(ctx)
//
//	h.Login(ctx, &session.User{ID: "1", Name: "Ada", Role: session.RoleMember}, token)
//	state := h.State() // state.IsAuthenticated == true
//
//	h.Logout(ctx)
//
// Until Hydrate (or SetHydrated) has run, State().Hydrated is false and the
// session must be treated as unknown rather than anonymous.
//
// Store implementations in this package are MemoryStore and FileStore.
// Cookie and Redis backed stores live in sessiontransport and
// integration/database/redis.
package session
