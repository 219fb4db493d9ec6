package storage

import (
	"context"

	"rentledger/internal/core"
)

// Store persists ledgers and binding tables as whole documents addressed by
// name (core.DocMainLedger, core.DocPersonBindings, ...). Loading a missing
// or unreadable document yields an empty mapping.
type Store interface {
	LoadLedger(ctx context.Context, name string) (core.Ledger, error)
	SaveLedger(ctx context.Context, name string, ledger core.Ledger) error
	LoadBindings(ctx context.Context, name string) (core.BindingTable, error)
	SaveBindings(ctx context.Context, name string, table core.BindingTable) error
	Close() error
}
