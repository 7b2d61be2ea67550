package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/memberportal/core/config"
	"github.com/dmitrymomot/memberportal/core/cookie"
	"github.com/dmitrymomot/memberportal/core/guard"
	"github.com/dmitrymomot/memberportal/core/logger"
	"github.com/dmitrymomot/memberportal/core/query"
	"github.com/dmitrymomot/memberportal/core/server"
	"github.com/dmitrymomot/memberportal/core/sessiontransport"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
	"github.com/dmitrymomot/memberportal/integration/database/redis"
	"github.com/dmitrymomot/memberportal/pkg/ratelimiter"
)

// App wires the portal's HTTP surface to the remote API.
type App struct {
	config     *Config
	logger     *slog.Logger
	cookies    *cookie.Manager
	credential *sessiontransport.Credential
	stores     sessiontransport.StoreFactory
	api        *apiclient.Client
	queries    *query.Client
	rules      guard.Rules
	server     *server.Server
	content    Content

	limitStore *ratelimiter.MemoryStore
	limiter    *ratelimiter.Bucket

	redis       *goredis.Client
	ownsRedis   bool
	credentials *redis.CredentialStore
}

// AppOption customizes NewApp.
type AppOption func(*App) error

// NewApp builds the portal. Configuration comes from the environment unless
// WithConfig is given; Redis is connected when REDIS_URL is set.
func NewApp(ctx context.Context, opts ...AppOption) (*App, error) {
	app := &App{
		logger:  logger.Discard(),
		content: DefaultContent(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		var cfg Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		app.config = &cfg
	}
	cfg := app.config

	app.rules = guard.NewFromConfig(cfg.Guard)

	if app.cookies == nil {
		cm, err := cookie.NewFromConfig(cfg.Cookie)
		if err != nil {
			return nil, err
		}
		app.cookies = cm
	}
	app.credential = sessiontransport.NewCredential(app.cookies, cfg.Session)

	if app.redis == nil && cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.redis = client
		app.ownsRedis = true
	}
	if app.redis != nil {
		app.credentials = redis.NewCredentialStoreFromConfig(app.redis, cfg.Redis)
		app.stores = sessiontransport.KeyedStores(app.cookies, app.credentials, cfg.Session)
	} else {
		app.stores = sessiontransport.CookieStores(app.cookies, cfg.Session)
	}

	if app.api == nil {
		api, err := apiclient.NewFromConfig(cfg.API, apiclient.WithLogger(app.logger))
		if err != nil {
			return nil, app.closeOnError(err)
		}
		app.api = api
	}

	if app.queries == nil {
		app.queries = query.NewFromConfig(cfg.Query, query.WithLogger(app.logger))
	}

	if cfg.LoginLimit.Enabled() {
		app.limitStore = ratelimiter.NewMemoryStore(ratelimiter.WithLogger(app.logger))
		limiter, err := ratelimiter.NewBucket(app.limitStore, cfg.LoginLimit)
		if err != nil {
			return nil, app.closeOnError(err)
		}
		app.limiter = limiter
	}

	if app.server == nil {
		s, err := server.NewFromConfig(cfg.Server, server.WithLogger(app.logger))
		if err != nil {
			return nil, app.closeOnError(err)
		}
		app.server = s
	}

	return app, nil
}

// WithConfig skips environment loading.
func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = &cfg
		return nil
	}
}

func WithLogger(l *slog.Logger) AppOption {
	return func(app *App) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = l
		return nil
	}
}

func WithAPIClient(c *apiclient.Client) AppOption {
	return func(app *App) error {
		if c == nil {
			return errors.New("api client cannot be nil")
		}
		app.api = c
		return nil
	}
}

func WithCookieManager(m *cookie.Manager) AppOption {
	return func(app *App) error {
		if m == nil {
			return errors.New("cookie manager cannot be nil")
		}
		app.cookies = m
		return nil
	}
}

// WithRedis uses an existing client for session storage. The caller keeps ownership.
func WithRedis(c *goredis.Client) AppOption {
	return func(app *App) error {
		if c == nil {
			return errors.New("redis client cannot be nil")
		}
		app.redis = c
		return nil
	}
}

func WithQueryClient(q *query.Client) AppOption {
	return func(app *App) error {
		if q == nil {
			return errors.New("query client cannot be nil")
		}
		app.queries = q
		return nil
	}
}

func WithServer(s *server.Server) AppOption {
	return func(app *App) error {
		if s == nil {
			return errors.New("server cannot be nil")
		}
		app.server = s
		return nil
	}
}

// WithContent replaces the static page content.
func WithContent(c Content) AppOption {
	return func(app *App) error {
		app.content = c
		return nil
	}
}

// Run serves until ctx is canceled.
func (app *App) Run(ctx context.Context) error {
	defer app.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(app.server.Run(ctx, app.Handler()))
	if app.limitStore != nil {
		g.Go(app.limitStore.Run(ctx))
	}
	return g.Wait()
}

// Close releases the Redis connection if NewApp opened it.
func (app *App) Close() error {
	if app.ownsRedis && app.redis != nil {
		err := app.redis.Close()
		app.redis = nil
		return err
	}
	return nil
}

func (app *App) closeOnError(err error) error {
	return errors.Join(err, app.Close())
}

// Handler returns the portal's root handler.
func (app *App) Handler() http.Handler {
	return app.routes()
}
