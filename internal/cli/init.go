// Package cli holds the start-up steps shared by the rentledger binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rentledger/internal/backend"
	"rentledger/internal/config"
	applog "rentledger/internal/log"
)

// LoadEnvFile loads .env (or the given files) for local development.
// A missing file is not an error; production sets the environment directly.
func LoadEnvFile(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load env file", "files", files, "error", err)
	}
}

// SetupLogger builds the component logger from configuration and installs
// it as the slog default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it. validate is
// usually (*config.Config).Validate or ValidateWorker.
func LoadAndValidateConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenBackend opens the configured store and, when sync is enabled, the
// ledger sync publisher.
func OpenBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).Open(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// Fatal logs err and exits.
func Fatal(logger *applog.Logger, msg string, err error) {
	logger.Error(msg, applog.FieldError, err)
	os.Exit(1)
}

// GracefulShutdown returns a context cancelled on SIGINT, SIGTERM or when
// parent ends. Cleanup then runs with a context bounded by timeout and done
// is closed when it returns.
func GracefulShutdown(parent context.Context, logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
