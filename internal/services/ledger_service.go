package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/storage"
)

// SyncPublisher announces saved documents to downstream mirrors.
type SyncPublisher interface {
	PublishLedgerSync(ctx context.Context, msg *amqp.LedgerSyncMessage) error
}

// LedgerService is the session over one store: both ledgers and both
// binding tables held in memory. Mutations are applied to a copy, saved,
// and only then made visible, so reports never observe a half-applied
// change. Reads and mutations are serialized by one lock.
type LedgerService struct {
	store     storage.Store
	publisher SyncPublisher

	mu       sync.RWMutex
	ledgers  map[core.LedgerKind]core.Ledger
	bindings map[core.BindingKind]core.BindingTable
	revision int64
}

// NewLedgerService creates an empty session. publisher may be nil.
func NewLedgerService(store storage.Store, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		ledgers: map[core.LedgerKind]core.Ledger{
			core.MainLedger:  {},
			core.FixedLedger: {},
		},
		bindings: map[core.BindingKind]core.BindingTable{
			core.PersonBindings: {},
			core.MarketBindings: {},
		},
	}
}

// Load replaces the session with the four stored documents, fetched
// concurrently.
func (s *LedgerService) Load(ctx context.Context) error {
	var main, fixed core.Ledger
	var people, markets core.BindingTable

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		main, err = s.store.LoadLedger(gctx, core.DocMainLedger)
		return err
	})
	g.Go(func() (err error) {
		fixed, err = s.store.LoadLedger(gctx, core.DocFixedLedger)
		return err
	})
	g.Go(func() (err error) {
		people, err = s.store.LoadBindings(gctx, core.DocPersonBindings)
		return err
	})
	g.Go(func() (err error) {
		markets, err = s.store.LoadBindings(gctx, core.DocMarketBindings)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.ledgers[core.MainLedger] = main
	s.ledgers[core.FixedLedger] = fixed
	s.bindings[core.PersonBindings] = people
	s.bindings[core.MarketBindings] = markets
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	slog.InfoContext(ctx, "Session loaded",
		"main_days", len(main),
		"fixed_days", len(fixed),
		"people", len(people),
		"markets", len(markets),
		"revision", rev)
	return nil
}

// Save writes every document of the session.
func (s *LedgerService) Save(ctx context.Context) error {
	s.mu.RLock()
	main := s.ledgers[core.MainLedger].Clone()
	fixed := s.ledgers[core.FixedLedger].Clone()
	people := s.bindings[core.PersonBindings].Clone()
	markets := s.bindings[core.MarketBindings].Clone()
	rev := s.revision
	s.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.store.SaveLedger(gctx, core.DocMainLedger, main) })
	g.Go(func() error { return s.store.SaveLedger(gctx, core.DocFixedLedger, fixed) })
	g.Go(func() error { return s.store.SaveBindings(gctx, core.DocPersonBindings, people) })
	g.Go(func() error { return s.store.SaveBindings(gctx, core.DocMarketBindings, markets) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.publishSync(ctx, rev, core.DocMainLedger, core.DocFixedLedger, core.DocPersonBindings, core.DocMarketBindings)
	return nil
}

// Revision increases on every load and successful mutation.
func (s *LedgerService) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Day returns the entries recorded on date.
func (s *LedgerService) Day(kind core.LedgerKind, date string) ([]core.RentEntry, error) {
	if _, err := kind.Document(); err != nil {
		return nil, err
	}
	if _, err := core.ParseDay(date); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledgers[kind].EntriesOn(date), nil
}

// CommitDay replaces the entries of one day and saves the ledger. Callers
// invoke it before leaving a day view.
func (s *LedgerService) CommitDay(ctx context.Context, kind core.LedgerKind, date string, entries []core.RentEntry) error {
	if _, err := core.ParseDay(date); err != nil {
		return err
	}
	_, err := s.mutateLedger(ctx, kind, func(l core.Ledger) (int, error) {
		l.SetEntries(date, entries)
		return 1, nil
	})
	return err
}

// RemoveEntry deletes one entry. A day left empty is dropped.
func (s *LedgerService) RemoveEntry(ctx context.Context, kind core.LedgerKind, date string, index int) error {
	_, err := s.mutateLedger(ctx, kind, func(l core.Ledger) (int, error) {
		return 1, l.RemoveAt(date, index)
	})
	return err
}

// AddFixedRent expands rule into the fixed ledger and returns how many
// entries were appended.
func (s *LedgerService) AddFixedRent(ctx context.Context, rule core.RecurrenceRule, payload core.RentEntry) (int, error) {
	if err := payload.Validate(); err != nil {
		return 0, err
	}
	return s.mutateLedger(ctx, core.FixedLedger, func(l core.Ledger) (int, error) {
		return l.ApplyRecurrence(rule, payload), nil
	})
}

// ShiftMonth copies a month of the ledger one month forward. Zero copied
// days is a valid outcome and saves nothing.
func (s *LedgerService) ShiftMonth(ctx context.Context, kind core.LedgerKind, year, month int) (int, error) {
	return s.mutateLedger(ctx, kind, func(l core.Ledger) (int, error) {
		return l.ShiftMonth(year, month)
	})
}

// mutateLedger applies fn to a copy of the ledger and, when fn reports a
// non-zero change count, persists the copy before swapping it in.
func (s *LedgerService) mutateLedger(ctx context.Context, kind core.LedgerKind, fn func(core.Ledger) (int, error)) (int, error) {
	doc, err := kind.Document()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	next := s.ledgers[kind].Clone()
	n, err := fn(next)
	if err != nil || n == 0 {
		s.mu.Unlock()
		return n, err
	}
	if err := s.store.SaveLedger(ctx, doc, next); err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("save %s: %w", doc, err)
	}
	s.ledgers[kind] = next
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	s.publishSync(ctx, rev, doc)
	return n, nil
}

// Bindings returns a copy of one binding table.
func (s *LedgerService) Bindings(kind core.BindingKind) (core.BindingTable, error) {
	if _, err := kind.Document(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bindings[kind].Clone(), nil
}

func (s *LedgerService) SetBinding(ctx context.Context, kind core.BindingKind, code, name string) error {
	return s.mutateBindings(ctx, kind, func(t core.BindingTable) error {
		return t.Set(code, name)
	})
}

func (s *LedgerService) DeleteBinding(ctx context.Context, kind core.BindingKind, code string) error {
	return s.mutateBindings(ctx, kind, func(t core.BindingTable) error {
		t.Delete(code)
		return nil
	})
}

func (s *LedgerService) mutateBindings(ctx context.Context, kind core.BindingKind, fn func(core.BindingTable) error) error {
	doc, err := kind.Document()
	if err != nil {
		return err
	}

	s.mu.Lock()
	next := s.bindings[kind].Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.store.SaveBindings(ctx, doc, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save %s: %w", doc, err)
	}
	s.bindings[kind] = next
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	s.publishSync(ctx, rev, doc)
	return nil
}

// Settle runs a settlement over the merged ledgers.
func (s *LedgerService) Settle(partyA, partyB string, year, month int, fee decimal.Decimal) (SettlementReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Settle(SettlementInput{
		Ledger:  core.Merge(s.ledgers[core.MainLedger], s.ledgers[core.FixedLedger]),
		People:  s.bindings[core.PersonBindings],
		Markets: s.bindings[core.MarketBindings],
		PartyA:  partyA,
		PartyB:  partyB,
		Year:    year,
		Month:   month,
		Fee:     fee,
	})
}

// Summarize aggregates one person across both ledgers.
func (s *LedgerService) Summarize(person string) PersonSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summarize(SummaryInput{
		Main:    s.ledgers[core.MainLedger],
		Fixed:   s.ledgers[core.FixedLedger],
		People:  s.bindings[core.PersonBindings],
		Markets: s.bindings[core.MarketBindings],
		Person:  person,
	})
}

// Participants lists everyone a settlement can be run for.
func (s *LedgerService) Participants() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Participants(s.bindings[core.PersonBindings], s.ledgers[core.MainLedger], s.ledgers[core.FixedLedger])
}

// publishSync never fails the caller; the documents are already saved.
func (s *LedgerService) publishSync(ctx context.Context, revision int64, docs ...string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher, skipping ledger sync message", "documents", docs)
		return
	}
	if err := s.publisher.PublishLedgerSync(ctx, amqp.NewLedgerSyncMessage(revision, docs...)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger sync message",
			"revision", revision,
			"documents", docs,
			"error", err)
	}
}

// Close closes the underlying store.
func (s *LedgerService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
