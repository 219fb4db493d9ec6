package memory

import (
	"context"
	"sync"

	"rentledger/internal/core"
	ports "rentledger/internal/sheets"
)

// Exporter keeps the last export of every document in memory. It backs
// the worker when no spreadsheet is configured and is used in tests.
type Exporter struct {
	mu      sync.Mutex
	tabs    map[string][][]string
	exports int
}

var _ ports.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{tabs: map[string][][]string{}}
}

func (e *Exporter) ExportLedger(_ context.Context, name string, ledger core.Ledger) error {
	e.store(name, ports.LedgerRows(ledger))
	return nil
}

func (e *Exporter) ExportBindings(_ context.Context, name string, table core.BindingTable) error {
	e.store(name, ports.BindingRows(table))
	return nil
}

func (e *Exporter) store(name string, rows [][]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tabs[name] = rows
	e.exports++
}

// Tab returns the rows last exported for name, header included.
func (e *Exporter) Tab(name string) ([][]string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, ok := e.tabs[name]
	if !ok {
		return nil, false
	}
	out := make([][]string, len(rows))
	copy(out, rows)
	return out, true
}

// Exports counts every export call.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
