package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/compass/internal/config"
	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/UnknownOlympus/compass/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}

	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// app bundles what every command needs once the configuration is loaded.
type app struct {
	cfg        *config.Config
	log        *slog.Logger
	reg        *prometheus.Registry
	metrics    *metrics.Metrics
	dispatcher *geocoding.Dispatcher
}

// newApp loads the configuration and builds the dispatcher. Logs go to logOut.
func newApp(logOut io.Writer) (*app, error) {
	cfg := config.MustLoad(config.EnvFile())
	logger := setupLogger(cfg.Env, logOut)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dispatcher, err := geocoding.NewDispatcher(
		cfg.Resolvers,
		config.Environ(config.EnvFile()),
		geocoding.WithLogger(logger),
		geocoding.WithMetrics(appMetrics),
		geocoding.WithTimeout(cfg.HTTPTimeout),
	)
	if err != nil {
		logger.Error("Failed to configure geocoding resolvers", "error", err)
		return nil, err
	}

	logger.Info("Geocoding resolvers initialized", "settings", cfg.Settings, "resolvers", cfg.Resolvers)

	return &app{
		cfg:        cfg,
		log:        logger,
		reg:        reg,
		metrics:    appMetrics,
		dispatcher: dispatcher,
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "compass",
		Short: "address geocoding with provider failover",
		Long: `
compass resolves street addresses to coordinates through a primary geocoding
provider and falls back to one randomly chosen backup provider.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newResolveCmd(), newBackfillCmd())

	return root
}

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}

	// A bare exit status (address not found) has nothing to report.
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}
