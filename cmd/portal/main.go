package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/memberportal/app/portal"
	"github.com/dmitrymomot/memberportal/core/config"
	"github.com/dmitrymomot/memberportal/core/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg portal.Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mode := logger.WithProduction(cfg.AppName)
	if cfg.IsDevelopment() {
		mode = logger.WithDevelopment(cfg.AppName)
	}
	log := logger.New(
		mode,
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
	)

	app, err := portal.NewApp(ctx, portal.WithConfig(cfg), portal.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init portal: %w", err)
	}

	log.InfoContext(ctx, "starting portal",
		logger.Key("addr", cfg.Server.Addr),
		logger.Key("env", cfg.Env),
		logger.Key("redis", cfg.Redis.Enabled()),
	)
	return app.Run(ctx)
}
