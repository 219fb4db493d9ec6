package worker

import (
	"context"
	"fmt"
	"log/slog"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/sheets"
	"rentledger/internal/storage"
)

var ledgerDocs = map[string]bool{
	core.DocMainLedger:  true,
	core.DocFixedLedger: true,
}

var bindingDocs = map[string]bool{
	core.DocPersonBindings: true,
	core.DocMarketBindings: true,
}

// SyncWorker mirrors saved documents from the store to an exporter.
type SyncWorker struct {
	store    storage.Store
	exporter sheets.Exporter
}

func NewSyncWorker(store storage.Store, exporter sheets.Exporter) *SyncWorker {
	return &SyncWorker{
		store:    store,
		exporter: exporter,
	}
}

// HandleSyncMessage exports every document named in msg from the store's
// current snapshot. Revisions are per session and only logged. Unknown
// document names are ignored.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"revision", msg.Revision,
		"documents", msg.Documents)

	for _, doc := range msg.Documents {
		if !ledgerDocs[doc] && !bindingDocs[doc] {
			slog.WarnContext(ctx, "Ignoring unknown document", "document", doc)
			continue
		}
		if err := w.export(ctx, doc); err != nil {
			return fmt.Errorf("sync %s: %w", doc, err)
		}
	}
	return nil
}

// StartupSync mirrors all documents once, catching up on messages missed
// while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	successCount := 0
	for _, doc := range []string{core.DocMainLedger, core.DocFixedLedger, core.DocPersonBindings, core.DocMarketBindings} {
		if err := w.export(ctx, doc); err != nil {
			return fmt.Errorf("startup sync %s: %w", doc, err)
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed", "documents", successCount)
	return nil
}

func (w *SyncWorker) export(ctx context.Context, doc string) error {
	if ledgerDocs[doc] {
		ledger, err := w.store.LoadLedger(ctx, doc)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		return w.exporter.ExportLedger(ctx, doc, ledger)
	}
	table, err := w.store.LoadBindings(ctx, doc)
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	return w.exporter.ExportBindings(ctx, doc, table)
}
