package middleware

import (
	"net/http"

	"github.com/dmitrymomot/memberportal/core/guard"
	"github.com/dmitrymomot/memberportal/core/sessiontransport"
)

// CredentialGuardConfig configures CredentialGuard.
type CredentialGuardConfig struct {
	Rules      guard.Rules
	Credential *sessiontransport.Credential
}

// CredentialGuard redirects on bearer cookie presence alone, before any
// session state is loaded. The cookie is not verified here; the API
// validates the token on every call.
func CredentialGuard(cfg CredentialGuardConfig) func(http.Handler) http.Handler {
	if cfg.Credential == nil {
		panic("middleware: CredentialGuardConfig.Credential is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := cfg.Rules.DecideCredential(r.URL.Path, cfg.Credential.Present(r))
			if d.Outcome == guard.Redirect {
				redirect(w, r, d.Target)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
