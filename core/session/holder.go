package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/memberportal/core/logger"
)

// Holder is the single source of truth for who is logged in within one
// browser context. It is the only writer of its Store.
//
// Every mutator updates memory and writes the record through to the store
// while holding the lock, so no reader observes memory and storage out of step.
type Holder struct {
	mu     sync.RWMutex
	store  Store
	logger *slog.Logger

	user     *User
	token    string
	hydrated bool
	// mutated is set by any mutator; a snapshot read after it must not
	// overwrite the newer in-memory state.
	mutated bool
}

// HolderOption configures a Holder.
type HolderOption func(*Holder)

// WithLogger sets the logger used to report store failures.
func WithLogger(l *slog.Logger) HolderOption {
	return func(h *Holder) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHolder returns an empty, not yet hydrated holder over store.
// A nil store is replaced by a MemoryStore.
func NewHolder(store Store, opts ...HolderOption) *Holder {
	if store == nil {
		store = NewMemoryStore()
	}
	h := &Holder{
		store:  store,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Login records an authenticated user and bearer token.
// A nil user is treated as Logout.
func (h *Holder) Login(ctx context.Context, user *User, token string) {
	if user == nil {
		h.Logout(ctx)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.user = user.Clone()
	h.token = token
	h.mutated = true
	h.persistLocked(ctx, "login")
}

// Logout clears user and token. Calling it while anonymous is harmless.
func (h *Holder) Logout(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.user = nil
	h.token = ""
	h.mutated = true
	h.persistLocked(ctx, "logout")
}

// SetUser replaces the user, and the token when one is given.
// Passing a nil user clears the token too.
func (h *Holder) SetUser(ctx context.Context, user *User, token ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.user = user.Clone()
	if len(token) > 0 {
		h.token = token[0]
	}
	if h.user == nil {
		h.token = ""
	}
	h.mutated = true
	h.persistLocked(ctx, "set_user")
}

// SetHydrated marks the holder as hydrated. It never touches user or token.
func (h *Holder) SetHydrated() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hydrated = true
}

// Hydrate loads the persisted record once and then marks the holder hydrated.
// Unreadable or malformed records are logged and treated as absent.
func (h *Holder) Hydrate(ctx context.Context) {
	h.mu.RLock()
	done := h.hydrated
	h.mu.RUnlock()
	if done {
		return
	}

	rec, err := h.store.Read(ctx)
	if err != nil {
		lvl := slog.LevelError
		if errors.Is(err, ErrMalformedRecord) {
			lvl = slog.LevelWarn
		}
		h.logger.Log(ctx, lvl, "session: rehydration failed, continuing anonymous",
			logger.Component("session"),
			logger.Error(err),
		)
		rec = nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.hydrated {
		return
	}
	if rec != nil && !h.mutated {
		r := rec.normalize()
		h.user = r.User
		h.token = r.Token
	}
	h.hydrated = true
}

// HydrateAsync runs Hydrate on its own goroutine.
// The returned channel is closed once the holder is hydrated.
func (h *Holder) HydrateAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Hydrate(ctx)
	}()
	return done
}

// State returns a snapshot of the holder.
func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return State{
		User:            h.user.Clone(),
		Token:           h.token,
		IsAuthenticated: h.user != nil,
		Hydrated:        h.hydrated,
	}
}

// User returns a copy of the current user or nil.
func (h *Holder) User() *User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.user.Clone()
}

// Token returns the current bearer token or "".
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// IsAuthenticated reports whether a user is present.
func (h *Holder) IsAuthenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.user != nil
}

// Hydrated reports whether the persisted record has been read.
func (h *Holder) Hydrated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.hydrated
}

func (h *Holder) persistLocked(ctx context.Context, action string) {
	rec := Record{
		User:            h.user.Clone(),
		Token:           h.token,
		IsAuthenticated: h.user != nil,
	}
	if err := h.store.Write(ctx, rec); err != nil {
		h.logger.ErrorContext(ctx, "session: failed to persist record",
			logger.Component("session"),
			logger.Action(action),
			logger.Error(err),
		)
	}
}
