package sessiontransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/memberportal/core/cookie"
	"github.com/dmitrymomot/memberportal/core/session"
)

// StoreFactory builds the persisted store for one request.
type StoreFactory func(w http.ResponseWriter, r *http.Request) session.Store

// CookieStore persists the session record in an encrypted cookie.
// It is bound to a single request/response pair.
type CookieStore struct {
	cookies *cookie.Manager
	name    string
	maxAge  int
	w       http.ResponseWriter
	r       *http.Request
}

// NewCookieStore binds a cookie-backed store to a request.
func NewCookieStore(cookies *cookie.Manager, cfg Config, w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{
		cookies: cookies,
		name:    cfg.RecordCookie,
		maxAge:  cfg.maxAge(),
		w:       w,
		r:       r,
	}
}

// CookieStores returns a StoreFactory producing CookieStores.
func CookieStores(cookies *cookie.Manager, cfg Config) StoreFactory {
	return func(w http.ResponseWriter, r *http.Request) session.Store {
		return NewCookieStore(cookies, cfg, w, r)
	}
}

func (s *CookieStore) Read(_ context.Context) (*session.Record, error) {
	raw, err := s.cookies.GetEncrypted(s.r, s.name)
	if err != nil {
		if errors.Is(err, cookie.ErrCookieNotFound) {
			return nil, nil
		}
		// Undecryptable cookies (rotated secrets, tampering) count as malformed.
		return nil, errors.Join(session.ErrMalformedRecord, err)
	}

	var rec session.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, errors.Join(session.ErrMalformedRecord, err)
	}
	return &rec, nil
}

// Write stores rec; an empty record expires the cookie instead.
func (s *CookieStore) Write(_ context.Context, rec session.Record) error {
	if rec.Empty() {
		s.cookies.Delete(s.w, s.name)
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Join(session.ErrWriteRecord, err)
	}

	if err := s.cookies.SetEncrypted(s.w, s.name, string(data),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithMaxAge(s.maxAge),
	); err != nil {
		return errors.Join(session.ErrWriteRecord, err)
	}
	return nil
}
