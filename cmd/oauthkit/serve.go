package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/oauthkit/internal/server"
	"github.com/dmitrymomot/oauthkit/pkg/logger"
	"github.com/dmitrymomot/oauthkit/pkg/oauth"
	"github.com/dmitrymomot/oauthkit/pkg/statestore"
)

const sentryFlushTimeout = 2 * time.Second

type stateStore interface {
	oauth.StateStore
	Ping(ctx context.Context) error
}

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the login server",
		Long: `Start the HTTP server exposing /auth/{provider} and /auth/{provider}/callback
for every configured provider. States are kept in Redis when REDIS_URL is set
and in memory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), f)
		},
	}
}

func runServe(ctx context.Context, f *rootFlags) error {
	cfg, providers, err := f.load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, server.RequestIDExtractor())
	defer logger.Flush(sentryFlushTimeout)

	var (
		store stateStore
		hooks []func(context.Context) error
	)
	if cfg.RedisURL != "" {
		rc, err := statestore.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", slog.String("error", err.Error()))
			return err
		}
		store = statestore.NewRedis(rc)
		hooks = append(hooks, func(context.Context) error { return rc.Close() })
	} else {
		mem := statestore.NewMemory(statestore.WithDefaultTTL(cfg.StateTTL))
		store = mem
		hooks = append(hooks, func(context.Context) error { return mem.Close() })
	}

	clients := make(map[string]*oauth.Client, len(providers))
	for name, p := range providers {
		c, err := p.NewClient(
			oauth.WithStateStore(store, cfg.StateTTL),
			oauth.WithLogger(log),
		)
		if err != nil {
			log.Error("failed to configure provider", slog.String("provider", name), slog.String("error", err.Error()))
			return err
		}
		clients[name] = c
		log.Info("provider configured",
			slog.String("provider", name),
			slog.String("type", p.Type),
			slog.String("redirect_uri", c.RedirectURI()),
		)
	}

	srv := server.New(clients,
		server.WithLogger(log),
		server.WithCheck("state_store", store.Ping),
	)
	return server.Run(ctx, server.RunConfig{
		Handler:         srv.Handler(),
		Logger:          log,
		Addr:            cfg.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		ShutdownHooks:   hooks,
	})
}
