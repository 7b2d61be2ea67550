package sessiontransport

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/memberportal/core/cookie"
)

// Credential is the transport-level copy of the bearer token, kept in a
// signed cookie so the server-side guard can check for its presence
// before any handler runs.
type Credential struct {
	cookies *cookie.Manager
	name    string
	maxAge  int
}

// NewCredential creates a credential cookie accessor.
func NewCredential(cookies *cookie.Manager, cfg Config) *Credential {
	return &Credential{
		cookies: cookies,
		name:    cfg.CredentialCookie,
		maxAge:  cfg.maxAge(),
	}
}

// Name returns the cookie name.
func (c *Credential) Name() string {
	return c.name
}

// Set issues the credential cookie.
func (c *Credential) Set(w http.ResponseWriter, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return c.cookies.SetSigned(w, c.name, token,
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithMaxAge(c.maxAge),
	)
}

// Get returns the verified token.
func (c *Credential) Get(r *http.Request) (string, error) {
	token, err := c.cookies.GetSigned(r, c.name)
	switch {
	case errors.Is(err, cookie.ErrCookieNotFound):
		return "", ErrNoToken
	case err != nil:
		return "", errors.Join(ErrInvalidToken, err)
	case token == "":
		return "", ErrNoToken
	}
	return token, nil
}

// Present reports whether the request carries a credential cookie at all.
// Signature and token validity are not checked; the API re-validates the
// token on every call.
func (c *Credential) Present(r *http.Request) bool {
	return c.cookies.Has(r, c.name)
}

// Clear removes the credential cookie.
func (c *Credential) Clear(w http.ResponseWriter) {
	c.cookies.Delete(w, c.name)
}
