package sheets

import (
	"context"

	"rentledger/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerExporter mirrors a whole ledger document, replacing what the
	// destination held before.
	LedgerExporter interface {
		ExportLedger(ctx context.Context, name string, ledger core.Ledger) error
	}

	// BindingsExporter mirrors a binding table document.
	BindingsExporter interface {
		ExportBindings(ctx context.Context, name string, table core.BindingTable) error
	}

	Exporter interface {
		LedgerExporter
		BindingsExporter
	}
)
