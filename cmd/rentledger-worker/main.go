package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"rentledger/internal/amqp"
	"rentledger/internal/cli"
	"rentledger/internal/config"
	applog "rentledger/internal/log"
	"rentledger/internal/sheets"
	gsheet "rentledger/internal/sheets/google"
	"rentledger/internal/sheets/memory"
	"rentledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker, os.Stdout)
	logger.Info("Starting rentledger-worker")

	cfg.SyncEnabled = false
	res, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to open data backend", err)
	}

	var exporter sheets.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		exporter = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = memory.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}

	parent, stop := context.WithCancel(context.Background())
	ctx, done := cli.GracefulShutdown(parent, logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := consumer.Close(); err != nil {
			logger.Error("AMQP close error", applog.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	syncWorker := worker.NewSyncWorker(res.Store, exporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A failed startup sync is retried by the next message.
		if err := syncWorker.StartupSync(gctx); err != nil {
			logger.Error("Startup sync failed", applog.FieldError, err)
		}
		return nil
	})
	g.Go(func() error {
		return consumer.ConsumeLedgerSync(gctx, syncWorker.HandleSyncMessage)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
	}

	stop()
	<-done
	logger.Info("Worker shutdown complete")
}
