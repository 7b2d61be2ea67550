package portal

import (
	"github.com/dmitrymomot/memberportal/core/cookie"
	"github.com/dmitrymomot/memberportal/core/guard"
	"github.com/dmitrymomot/memberportal/core/query"
	"github.com/dmitrymomot/memberportal/core/server"
	"github.com/dmitrymomot/memberportal/core/sessiontransport"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
	"github.com/dmitrymomot/memberportal/integration/database/redis"
	"github.com/dmitrymomot/memberportal/pkg/ratelimiter"
)

// Config is the full portal configuration, loaded from the environment.
type Config struct {
	Server     server.Config
	Cookie     cookie.Config
	Session    sessiontransport.Config
	API        apiclient.Config
	Redis      redis.Config
	Guard      guard.Config
	Query      query.Config
	// Throttles sign-in attempts per client address. Capacity 0 disables it.
	LoginLimit ratelimiter.Config

	AppName   string `env:"APP_NAME" envDefault:"memberportal"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	BodyLimit int64  `env:"HTTP_BODY_LIMIT" envDefault:"1048576"`
}

// IsDevelopment reports whether the portal runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}
