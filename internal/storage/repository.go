package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"rentledger/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores every document as rows of one database file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const (
	selectLedgerSQL = `SELECT entry_date, market, rent, owner_code, user_code, note
		FROM ledger_entries WHERE ledger = ? ORDER BY entry_date, position`
	deleteLedgerSQL = `DELETE FROM ledger_entries WHERE ledger = ?`
	insertEntrySQL  = `INSERT INTO ledger_entries
		(ledger, entry_date, position, market, rent, owner_code, user_code, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectBindingsSQL = `SELECT code, name FROM bindings WHERE table_name = ?`
	deleteBindingsSQL = `DELETE FROM bindings WHERE table_name = ?`
	insertBindingSQL  = `INSERT INTO bindings (table_name, code, name) VALUES (?, ?, ?)`
)

// LoadLedger implements Store
func (r *SQLiteRepository) LoadLedger(ctx context.Context, name string) (core.Ledger, error) {
	rows, err := r.db.QueryContext(ctx, selectLedgerSQL, name)
	if err != nil {
		return nil, fmt.Errorf("query ledger %s: %w", name, err)
	}
	defer rows.Close()

	ledger := core.Ledger{}
	for rows.Next() {
		var date string
		var e core.RentEntry
		if err := rows.Scan(&date, &e.Market, &e.Rent, &e.Owner, &e.User, &e.Note); err != nil {
			return nil, fmt.Errorf("scan ledger %s: %w", name, err)
		}
		ledger.Append(date, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", name, err)
	}
	return ledger, nil
}

// SaveLedger implements Store. The previous snapshot is replaced in one
// transaction.
func (r *SQLiteRepository) SaveLedger(ctx context.Context, name string, ledger core.Ledger) error {
	count := 0
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteLedgerSQL, name); err != nil {
			return fmt.Errorf("clear ledger: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, insertEntrySQL)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, date := range ledger.Dates() {
			for pos, e := range ledger[date] {
				if _, err := stmt.ExecContext(ctx, name, date, pos, e.Market, e.Rent, e.Owner, e.User, e.Note); err != nil {
					return fmt.Errorf("insert entry %s #%d: %w", date, pos, err)
				}
				count++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save ledger %s: %w", name, err)
	}

	slog.InfoContext(ctx, "Ledger saved to SQLite", "document", name, "days", len(ledger), "entries", count)
	return nil
}

// LoadBindings implements Store
func (r *SQLiteRepository) LoadBindings(ctx context.Context, name string) (core.BindingTable, error) {
	rows, err := r.db.QueryContext(ctx, selectBindingsSQL, name)
	if err != nil {
		return nil, fmt.Errorf("query bindings %s: %w", name, err)
	}
	defer rows.Close()

	table := core.BindingTable{}
	for rows.Next() {
		var code, bound string
		if err := rows.Scan(&code, &bound); err != nil {
			return nil, fmt.Errorf("scan bindings %s: %w", name, err)
		}
		table[code] = bound
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read bindings %s: %w", name, err)
	}
	return table, nil
}

// SaveBindings implements Store
func (r *SQLiteRepository) SaveBindings(ctx context.Context, name string, table core.BindingTable) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteBindingsSQL, name); err != nil {
			return fmt.Errorf("clear bindings: %w", err)
		}
		for _, code := range table.Codes() {
			if _, err := tx.ExecContext(ctx, insertBindingSQL, name, code, table[code]); err != nil {
				return fmt.Errorf("insert binding %s: %w", code, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save bindings %s: %w", name, err)
	}

	slog.InfoContext(ctx, "Bindings saved to SQLite", "document", name, "count", len(table))
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	return tx.Commit()
}
