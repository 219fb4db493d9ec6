package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/sheets/memory"
	"rentledger/internal/storage"
)

type brokenStore struct {
	*storage.MemoryStore
}

func (brokenStore) LoadLedger(context.Context, string) (core.Ledger, error) {
	return nil, errors.New("database is locked")
}

func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.SaveLedger(ctx, core.DocMainLedger, core.Ledger{
		"2024-05-10": {{Market: "S01", Rent: "3000", Owner: "A100", User: "U200"}},
	}))
	require.NoError(t, store.SaveBindings(ctx, core.DocPersonBindings, core.BindingTable{"A100": "王"}))
	return store
}

func TestHandleSyncMessage(t *testing.T) {
	exporter := memory.New()
	w := NewSyncWorker(seededStore(t), exporter)

	err := w.HandleSyncMessage(context.Background(),
		amqp.NewLedgerSyncMessage(3, core.DocMainLedger, core.DocPersonBindings, "bogus"))
	require.NoError(t, err)

	rows, ok := exporter.Tab(core.DocMainLedger)
	require.True(t, ok)
	assert.Len(t, rows, 2)
	rows, ok = exporter.Tab(core.DocPersonBindings)
	require.True(t, ok)
	assert.Equal(t, []string{"A100", "王"}, rows[1])
	assert.Equal(t, 2, exporter.Exports())
}

func TestHandleSyncMessageAfterSessionRestart(t *testing.T) {
	exporter := memory.New()
	store := seededStore(t)
	w := NewSyncWorker(store, exporter)
	ctx := context.Background()

	require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewLedgerSyncMessage(40, core.DocMainLedger)))

	// A restarted server counts revisions from the start again.
	require.NoError(t, store.SaveLedger(ctx, core.DocMainLedger, core.Ledger{
		"2024-05-10": {{Market: "S01", Rent: "3000", Owner: "A100", User: "U200"}},
		"2024-05-11": {{Market: "S02", Rent: "800", Owner: "A100", User: "U200"}},
	}))
	require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewLedgerSyncMessage(2, core.DocMainLedger)))

	rows, ok := exporter.Tab(core.DocMainLedger)
	require.True(t, ok)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-05-11", rows[2][0])
	assert.Equal(t, "S02", rows[2][2])
	assert.Equal(t, 2, exporter.Exports())
}

func TestStartupSync(t *testing.T) {
	exporter := memory.New()
	w := NewSyncWorker(seededStore(t), exporter)

	require.NoError(t, w.StartupSync(context.Background()))
	assert.Equal(t, 4, exporter.Exports())

	rows, ok := exporter.Tab(core.DocFixedLedger)
	require.True(t, ok)
	assert.Len(t, rows, 1, "empty ledger exports only the header")
}

func TestHandleSyncMessageStoreError(t *testing.T) {
	w := NewSyncWorker(brokenStore{storage.NewMemoryStore()}, memory.New())

	err := w.HandleSyncMessage(context.Background(), amqp.NewLedgerSyncMessage(1, core.DocMainLedger))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}
