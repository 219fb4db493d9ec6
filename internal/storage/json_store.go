package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"rentledger/internal/core"
)

// JSONStore keeps every document as <dir>/<name>.json.
type JSONStore struct {
	dir string
}

func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

func (s *JSONStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *JSONStore) LoadLedger(ctx context.Context, name string) (core.Ledger, error) {
	ledger := core.Ledger{}
	if !s.read(ctx, name, &ledger) {
		return core.Ledger{}, nil
	}
	return ledger, nil
}

func (s *JSONStore) SaveLedger(ctx context.Context, name string, ledger core.Ledger) error {
	if ledger == nil {
		ledger = core.Ledger{}
	}
	return s.write(ctx, name, ledger)
}

func (s *JSONStore) LoadBindings(ctx context.Context, name string) (core.BindingTable, error) {
	table := core.BindingTable{}
	if !s.read(ctx, name, &table) {
		return core.BindingTable{}, nil
	}
	return table, nil
}

func (s *JSONStore) SaveBindings(ctx context.Context, name string, table core.BindingTable) error {
	if table == nil {
		table = core.BindingTable{}
	}
	return s.write(ctx, name, table)
}

func (s *JSONStore) Close() error { return nil }

// read decodes the document into v and reports whether it succeeded.
// Missing and corrupt documents are logged and treated as empty.
func (s *JSONStore) read(ctx context.Context, name string, v any) bool {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.DebugContext(ctx, "Document not found, starting empty", "document", name, "path", path)
		} else {
			slog.WarnContext(ctx, "Cannot read document, starting empty", "document", name, "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.WarnContext(ctx, "Corrupt document, starting empty", "document", name, "path", path, "error", err)
		return false
	}
	return true
}

// write replaces the document via a temp file and rename, so readers never
// see a partially written file.
func (s *JSONStore) write(ctx context.Context, name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}

	slog.DebugContext(ctx, "Document saved", "document", name, "bytes", len(data))
	return nil
}
