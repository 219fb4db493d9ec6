package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rentledger/internal/amqp"
	"rentledger/internal/storage"
)

// Publisher is what the ledger session needs from the broker client.
type Publisher interface {
	PublishLedgerSync(ctx context.Context, msg *amqp.LedgerSyncMessage) error
	Close() error
}

// Factory opens stores from configuration. dialer is swappable so tests
// can run without a broker.
type Factory struct {
	logger *slog.Logger
	dialer func(url, exchange, queue string) (Publisher, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		logger: logger,
		dialer: func(url, exchange, queue string) (Publisher, error) {
			c, err := amqp.NewClient(url, exchange, queue)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}

// Open creates the store and, when sync is enabled, the publisher. A
// broker that cannot be reached is logged and the store is still returned.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{Store: store}

	if cfg.SyncEnabled {
		pub, err := f.dialer(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			res.Publisher = pub
		}
	}

	res.Cleanup = func() error {
		var errs []error
		if res.Publisher != nil {
			if err := res.Publisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close publisher: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		return errors.Join(errs...)
	}
	return res, nil
}

// OpenStore opens only the store, for tools that never publish.
func (f *Factory) OpenStore(cfg Config) (storage.Store, error) {
	cfg.SyncEnabled = false
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return f.openStore(cfg)
}

func (f *Factory) openStore(cfg Config) (storage.Store, error) {
	switch cfg.Type {
	case JSONBackend:
		f.logger.Info("Initialized JSON backend", "data_directory", cfg.DataDir)
		return storage.NewJSONStore(cfg.DataDir), nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
