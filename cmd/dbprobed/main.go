// Command dbprobed serves on-demand database probes, readiness checks, and
// Prometheus metrics over HTTP until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drblury/pingcheck/config"
	"github.com/drblury/pingcheck/connectivity"
	"github.com/drblury/pingcheck/logging"
	"github.com/drblury/pingcheck/metrics"
	"github.com/drblury/pingcheck/probe"
	"github.com/drblury/pingcheck/router"
	"github.com/drblury/pingcheck/server"
)

const shutdownTimeout = 15 * time.Second

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
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	handler, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "target", connectivity.Redact(cfg.DatabaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func buildHandler(ctx context.Context, cfg config.Config, logger *slog.Logger) (http.Handler, error) {
	prober := connectivity.New(cfg.DatabaseURL,
		connectivity.WithTimeout(cfg.Timeout),
		connectivity.WithCloseTimeout(cfg.CloseTimeout),
		connectivity.WithLogger(logger),
	)

	routerCfg := router.DefaultConfig()
	routerCfg.Timeout = cfg.HTTPTimeout
	routerCfg.CORS.Origins = cfg.AllowedOrigins

	client := &http.Client{Timeout: cfg.Timeout}
	deps := probe.NewHTTPDependencyProbes(cfg.HTTPDependencies, client,
		probe.WithHTTPTimeout(cfg.Timeout),
		probe.WithHTTPHeader("User-Agent", "pingcheck-dbprobed"),
	)

	return server.New(ctx, prober,
		server.WithLogger(logger),
		server.WithMetrics(metrics.New(metrics.WithRuntimeCollectors())),
		server.WithDependencies(deps...),
		server.WithRouterConfig(routerCfg),
		server.WithProbeRateLimit(cfg.ProbeRate, cfg.ProbeBurst),
	)
}
