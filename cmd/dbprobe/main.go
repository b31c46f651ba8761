// Command dbprobe connects to the database named by DATABASE_URL, pings it
// once, releases the connection, and prints the outcome.
//
// The exit status is 0 whether or not the ping succeeded, unless
// PROBE_STRICT is set, in which case a failed probe exits 1. Invalid
// configuration exits 2.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/drblury/pingcheck/config"
	"github.com/drblury/pingcheck/connectivity"
	"github.com/drblury/pingcheck/logging"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Stderr: stderr,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	defer closer.Close()

	prober := connectivity.New(cfg.DatabaseURL,
		connectivity.WithTimeout(cfg.Timeout),
		connectivity.WithCloseTimeout(cfg.CloseTimeout),
		connectivity.WithLogger(logger),
	)
	report := prober.Run(ctx)

	if err := connectivity.WriteReport(stdout, report, cfg.Output); err != nil {
		logger.Error("failed to write report", "error", err)
		return exitFailed
	}
	if !report.OK && cfg.Strict {
		return exitFailed
	}
	return exitOK
}
