package storage

import (
	"context"
	"sync"

	"rentledger/internal/core"
)

// MemoryStore keeps documents in process. Values are copied on the way in
// and out.
type MemoryStore struct {
	mu       sync.RWMutex
	ledgers  map[string]core.Ledger
	bindings map[string]core.BindingTable
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ledgers:  map[string]core.Ledger{},
		bindings: map[string]core.BindingTable{},
	}
}

func (m *MemoryStore) LoadLedger(_ context.Context, name string) (core.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.ledgers[name]; ok {
		return l.Clone(), nil
	}
	return core.Ledger{}, nil
}

func (m *MemoryStore) SaveLedger(_ context.Context, name string, ledger core.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[name] = ledger.Clone()
	return nil
}

func (m *MemoryStore) LoadBindings(_ context.Context, name string) (core.BindingTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.bindings[name]; ok {
		return t.Clone(), nil
	}
	return core.BindingTable{}, nil
}

func (m *MemoryStore) SaveBindings(_ context.Context, name string, table core.BindingTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[name] = table.Clone()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
