// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command readctl is the Readtrack maintenance CLI.
//
//	readctl migrate up
//	readctl migrate down --steps 1
//	readctl recompute
//	readctl purge-sessions
//	readctl user create --username alice --email alice@example.com [--admin]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taibuivan/readtrack/internal/app"
	"github.com/taibuivan/readtrack/internal/platform/config"
	"github.com/taibuivan/readtrack/internal/platform/constants"
	pgstore "github.com/taibuivan/readtrack/internal/platform/postgres"
	redisstore "github.com/taibuivan/readtrack/internal/platform/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runtime holds the lazily opened infrastructure of one command run.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "readctl",
		Short:         "Readtrack maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	env := func() (*runtime, error) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
			With(slog.String("app", constants.AppName), slog.String("tool", "readctl"))

		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return &runtime{cfg: cfg, logger: logger}, nil
	}

	root.AddCommand(
		newMigrateCommand(env),
		newRecomputeCommand(env),
		newPurgeSessionsCommand(env),
		newUserCommand(env),
	)
	return root
}

// connect opens PostgreSQL and, when withCache is set, Redis.
func (rt *runtime) connect(ctx context.Context, withCache bool) error {
	pool, err := pgstore.NewPool(ctx, rt.cfg.DatabaseURL, rt.logger)
	if err != nil {
		return err
	}
	rt.pool = pool

	if withCache {
		client, err := redisstore.NewClient(ctx, rt.cfg.RedisURL, rt.logger)
		if err != nil {
			return err
		}
		rt.redis = client
	}
	return nil
}

// services wires the domain services. The CLI never issues tokens.
func (rt *runtime) services() *app.Services {
	return app.NewServices(rt.cfg, rt.pool, rt.redis, nil, rt.logger)
}

func (rt *runtime) close() {
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.logger.Warn("redis_close_failed", slog.Any("error", err))
		}
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
}
