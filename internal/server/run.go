package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/oauthkit/pkg/logger"
)

const (
	defaultAddr              = ":8080"
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
)

// RunConfig configures Run.
type RunConfig struct {
	Handler         http.Handler
	Logger          *slog.Logger
	Addr            string
	ShutdownTimeout time.Duration
	// ShutdownHooks run after the HTTP server stopped, in order.
	// They also run when the server fails to listen or serve.
	ShutdownHooks []func(context.Context) error
}

// Run serves cfg.Handler until ctx is done or the process receives SIGINT or SIGTERM,
// then shuts the server down gracefully and runs the shutdown hooks.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNope()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cfg.Handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.Join(err, runHooks(cfg, log))
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", slog.String("error", err.Error()))
		}
		return errors.Join(err, runHooks(cfg, log))
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, runShutdownHooks(shutdownCtx, cfg.ShutdownHooks, log)...)

	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}
	log.Info("shutdown completed")
	return nil
}

// runHooks runs the shutdown hooks on their own timeout when the server never
// reached a graceful shutdown.
func runHooks(cfg RunConfig, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return errors.Join(runShutdownHooks(ctx, cfg.ShutdownHooks, log)...)
}

func runShutdownHooks(ctx context.Context, hooks []func(context.Context) error, log *slog.Logger) []error {
	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.String("error", err.Error()))
		}
	}
	return errs
}
