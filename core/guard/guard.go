package guard

import (
	"path"
	"strings"

	"github.com/dmitrymomot/memberportal/core/session"
)

// Outcome is the guard's verdict.
type Outcome int

const (
	// Wait means the session is not hydrated yet; render nothing.
	Wait Outcome = iota
	// Render means the view may render.
	Render
	// Redirect means the client must be sent to Decision.Target.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a path against the rules.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Rules configures which paths are protected.
type Rules struct {
	// ProtectedPrefixes require an authenticated session.
	ProtectedPrefixes []string
	// AdminPrefixes additionally require the admin role. They are protected
	// even when not listed in ProtectedPrefixes.
	AdminPrefixes []string
	// LoginPath is where anonymous users are sent; authenticated users
	// requesting it are sent to HomePath.
	LoginPath string
	// HomePath is the authenticated landing page.
	HomePath string
}

// DefaultRules returns the portal's route table.
func DefaultRules() Rules {
	return Rules{
		ProtectedPrefixes: []string{"/dashboard", "/profile", "/settings"},
		AdminPrefixes:     []string{"/admin"},
		LoginPath:         "/login",
		HomePath:          "/dashboard",
	}
}

// Decide evaluates p against the in-memory session state.
func (r Rules) Decide(p string, st session.State) Decision {
	if !st.Hydrated {
		return Decision{Outcome: Wait}
	}
	return r.decide(p, st.IsAuthenticated, st.Role(), true)
}

// DecideCredential evaluates p given only whether a credential is present.
// Role is unknown here, so admin prefixes are guarded as plain protected paths.
func (r Rules) DecideCredential(p string, hasCredential bool) Decision {
	return r.decide(p, hasCredential, "", false)
}

func (r Rules) decide(p string, authenticated bool, role session.Role, checkRole bool) Decision {
	p = cleanPath(p)

	if r.LoginPath != "" && p == cleanPath(r.LoginPath) {
		if authenticated {
			return Decision{Outcome: Redirect, Target: r.HomePath}
		}
		return Decision{Outcome: Render}
	}

	admin := r.IsAdminPath(p)
	if !authenticated && (admin || r.IsProtected(p)) {
		return Decision{Outcome: Redirect, Target: r.LoginPath}
	}

	if admin && checkRole && role != session.RoleAdmin {
		return Decision{Outcome: Redirect, Target: r.HomePath}
	}

	return Decision{Outcome: Render}
}

// IsProtected reports whether p falls under a protected or admin prefix.
func (r Rules) IsProtected(p string) bool {
	return matchAny(cleanPath(p), r.ProtectedPrefixes) || r.IsAdminPath(p)
}

// IsAdminPath reports whether p falls under an admin prefix.
func (r Rules) IsAdminPath(p string) bool {
	return matchAny(cleanPath(p), r.AdminPrefixes)
}

func matchAny(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if hasSegmentPrefix(p, cleanPath(prefix)) {
			return true
		}
	}
	return false
}

// hasSegmentPrefix matches whole path segments: "/a" matches "/a" and "/a/b", not "/ab".
func hasSegmentPrefix(p, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	return len(p) == len(prefix) || p[len(prefix)] == '/'
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}
