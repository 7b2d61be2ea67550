package sessiontransport

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/memberportal/core/cookie"
	"github.com/dmitrymomot/memberportal/core/session"
)

// Backend stores session records by key (for example Redis).
// Load returns nil, nil for unknown keys.
type Backend interface {
	Load(ctx context.Context, key string) (*session.Record, error)
	Save(ctx context.Context, key string, rec session.Record) error
	Remove(ctx context.Context, key string) error
}

// KeyedStore keeps the record in a Backend and only a signed session id in
// the browser. A new id is issued whenever the stored token changes, so a
// pre-existing id never ends up owning a fresh login.
type KeyedStore struct {
	cookies *cookie.Manager
	backend Backend
	name    string
	maxAge  int
	w       http.ResponseWriter
	r       *http.Request

	sid    string
	token  string
	loaded bool
}

// NewKeyedStore binds a backend-backed store to a request.
func NewKeyedStore(cookies *cookie.Manager, backend Backend, cfg Config, w http.ResponseWriter, r *http.Request) *KeyedStore {
	return &KeyedStore{
		cookies: cookies,
		backend: backend,
		name:    cfg.SessionIDCookie,
		maxAge:  cfg.maxAge(),
		w:       w,
		r:       r,
	}
}

// KeyedStores returns a StoreFactory producing KeyedStores over backend.
func KeyedStores(cookies *cookie.Manager, backend Backend, cfg Config) StoreFactory {
	return func(w http.ResponseWriter, r *http.Request) session.Store {
		return NewKeyedStore(cookies, backend, cfg, w, r)
	}
}

func (s *KeyedStore) Read(ctx context.Context) (*session.Record, error) {
	s.resolve()
	if s.sid == "" {
		return nil, nil
	}

	rec, err := s.backend.Load(ctx, s.sid)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.token = rec.Token
	}
	return rec, nil
}

func (s *KeyedStore) Write(ctx context.Context, rec session.Record) error {
	s.resolve()

	if rec.Empty() {
		if s.sid != "" {
			if err := s.backend.Remove(ctx, s.sid); err != nil {
				return errors.Join(session.ErrWriteRecord, err)
			}
		}
		s.sid, s.token = "", ""
		s.cookies.Delete(s.w, s.name)
		return nil
	}

	if s.sid == "" || rec.Token != s.token {
		if s.sid != "" {
			// Best effort: the old id is abandoned either way.
			_ = s.backend.Remove(ctx, s.sid)
		}
		s.sid = uuid.NewString()
		if err := s.cookies.SetSigned(s.w, s.name, s.sid,
			cookie.WithHTTPOnly(true),
			cookie.WithSameSite(http.SameSiteLaxMode),
			cookie.WithMaxAge(s.maxAge),
		); err != nil {
			return errors.Join(session.ErrWriteRecord, err)
		}
	}

	if err := s.backend.Save(ctx, s.sid, rec); err != nil {
		return errors.Join(session.ErrWriteRecord, err)
	}
	s.token = rec.Token
	return nil
}

// SessionID returns the id currently bound to the response, if any.
func (s *KeyedStore) SessionID() string {
	return s.sid
}

// resolve reads the session id cookie once per request.
func (s *KeyedStore) resolve() {
	if s.loaded {
		return
	}
	s.loaded = true

	sid, err := s.cookies.GetSigned(s.r, s.name)
	if err != nil {
		return
	}
	if _, err := uuid.Parse(sid); err != nil {
		return
	}
	s.sid = sid
}
