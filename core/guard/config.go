package guard

import "strings"

// Config provides environment-based configuration for the route guard.
type Config struct {
	ProtectedPrefixes string `env:"GUARD_PROTECTED_PREFIXES" envDefault:"/dashboard,/profile,/settings"`
	AdminPrefixes     string `env:"GUARD_ADMIN_PREFIXES" envDefault:"/admin"`
	LoginPath         string `env:"GUARD_LOGIN_PATH" envDefault:"/login"`
	HomePath          string `env:"GUARD_HOME_PATH" envDefault:"/dashboard"`
}

// NewFromConfig builds Rules from configuration; empty fields keep DefaultRules values.
func NewFromConfig(cfg Config) Rules {
	r := DefaultRules()
	if v := splitList(cfg.ProtectedPrefixes); v != nil {
		r.ProtectedPrefixes = v
	}
	if v := splitList(cfg.AdminPrefixes); v != nil {
		r.AdminPrefixes = v
	}
	if cfg.LoginPath != "" {
		r.LoginPath = cfg.LoginPath
	}
	if cfg.HomePath != "" {
		r.HomePath = cfg.HomePath
	}
	return r
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
