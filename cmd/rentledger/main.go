package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"rentledger/internal/cli"
	"rentledger/internal/config"
	apphttp "rentledger/internal/http"
	applog "rentledger/internal/log"
	"rentledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig((*config.Config).Validate)
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp, os.Stdout)

	res, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to open data backend", err)
	}

	var publisher services.SyncPublisher
	if res.Publisher != nil {
		publisher = res.Publisher
	}
	svc := services.NewLedgerService(res.Store, publisher)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	err = svc.Load(loadCtx)
	cancelLoad()
	if err != nil {
		cli.Fatal(logger, "Failed to load ledgers", err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:    logger.WithComponent(applog.ComponentHTTP),
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(context.Background(), logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting rentledger server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"sync_enabled", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
