package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/memberportal/core/config"
	"github.com/dmitrymomot/memberportal/core/guard"
	"github.com/dmitrymomot/memberportal/core/logger"
	"github.com/dmitrymomot/memberportal/core/session"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
)

// Config holds portalctl defaults; flags override them.
type Config struct {
	APIURL      string `env:"PORTALCTL_API_URL" envDefault:"http://localhost:8000/api"`
	SessionFile string `env:"PORTALCTL_SESSION_FILE"`
	LogLevel    string `env:"PORTALCTL_LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"PORTALCTL_LOG_FORMAT" envDefault:"text"`
	Guard       guard.Config
}

// state is shared by every subcommand of one invocation.
type state struct {
	cfg   Config
	debug bool

	logger   *slog.Logger
	store    *session.FileStore
	holder   *session.Holder
	hydrated <-chan struct{}
	anon     *apiclient.Client // sign-in calls; never carries the stored bearer
	api      *apiclient.Client
	rules    guard.Rules
}

// NewRootCmd creates the portalctl command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}
	cfgErr := config.Load(&st.cfg)

	root := &cobra.Command{
		Use:   "portalctl",
		Short: "Command line client for the member portal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return fmt.Errorf("load config: %w", cfgErr)
			}
			return st.init(cmd)
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&st.cfg.APIURL, "api", st.cfg.APIURL, "Portal API base URL (or PORTALCTL_API_URL env)")
	flags.StringVar(&st.cfg.SessionFile, "session-file", st.cfg.SessionFile, "Session file (default <user config dir>/memberportal/session.json)")
	flags.StringVar(&st.cfg.LogLevel, "log-level", st.cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&st.cfg.LogFormat, "log-format", st.cfg.LogFormat, "Log format (text, json)")
	flags.BoolVar(&st.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newLoginCmd(st),
		newLogoutCmd(st),
		newWhoamiCmd(st),
		newListCmd(st),
	)
	return root
}

func (st *state) init(cmd *cobra.Command) error {
	level := st.cfg.LogLevel
	if st.debug {
		level = "debug"
	}
	opts := []logger.Option{
		logger.WithLevel(logger.ParseLevel(level)),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithAttr(logger.Component("portalctl")),
	}
	if st.cfg.LogFormat == "json" {
		opts = append(opts, logger.WithJSONFormatter())
	}
	st.logger = logger.New(opts...)

	path := st.cfg.SessionFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("find config directory: %w", err)
		}
		path = filepath.Join(dir, "memberportal", "session.json")
	}
	st.store = session.NewFileStore(path)
	st.holder = session.NewHolder(st.store, session.WithLogger(st.logger))
	st.rules = guard.NewFromConfig(st.cfg.Guard)

	anon, err := apiclient.New(st.cfg.APIURL,
		apiclient.WithLogger(st.logger),
		apiclient.WithUserAgent("portalctl"),
	)
	if err != nil {
		return err
	}
	st.anon = anon
	st.api = anon.With(
		apiclient.WithTokenSource(st.holder),
		apiclient.WithUnauthorizedHandler(func(ctx context.Context) {
			st.holder.Logout(context.WithoutCancel(ctx))
		}),
	)

	// Reading the file overlaps with flag handling and request setup.
	st.hydrated = st.holder.HydrateAsync(cmd.Context())
	return nil
}

// awaitHydration blocks until the stored session has been loaded.
func (st *state) awaitHydration(ctx context.Context) error {
	select {
	case <-st.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// authorize applies the route rules to the virtual path a command stands for.
func (st *state) authorize(ctx context.Context, path string) error {
	if err := st.awaitHydration(ctx); err != nil {
		return err
	}
	d := st.rules.Decide(path, st.holder.State())
	switch {
	case d.Outcome == guard.Render:
		return nil
	case d.Outcome == guard.Redirect && d.Target == st.rules.LoginPath:
		return ErrNotLoggedIn
	case d.Outcome == guard.Redirect:
		return ErrAdminOnly
	}
	return ErrNotLoggedIn
}

// apiError turns an API rejection of the stored token into ErrSessionExpired.
func apiError(op string, err error) error {
	if apiclient.IsUnauthorized(err) {
		return ErrSessionExpired
	}
	return fmt.Errorf("%s: %w", op, err)
}
