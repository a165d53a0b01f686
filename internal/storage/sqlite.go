package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"

	_ "modernc.org/sqlite"
)

// SQLite persists entries in a single table, one row per entry. Amounts
// are stored as decimal strings and line items as a JSON column, so no
// precision is lost round-tripping through the database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, entry_date, total, entry_type, category, description, items
		FROM entries
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var (
			e         core.Entry
			createdAt string
			total     string
			items     string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Date, &total, &e.Type, &e.Category, &e.Description, &items); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse entry timestamp: %w", err)
		}
		if e.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse entry total: %w", err)
		}
		if err := json.Unmarshal([]byte(items), &e.Items); err != nil {
			return nil, fmt.Errorf("decode entry items: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	if err := validateLoaded(entries); err != nil {
		return nil, fmt.Errorf("validate entries: %w", err)
	}
	return entries, nil
}

// Replace rewrites the table in one transaction so readers either see the
// old collection or the new one, never a mix.
func (s *SQLite) Replace(ctx context.Context, entries []core.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, created_at, entry_date, total, entry_type, category, description, items)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		items, err := json.Marshal(e.Items)
		if err != nil {
			return fmt.Errorf("encode entry items: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			e.ID,
			e.Timestamp.Format(time.RFC3339Nano),
			e.Date,
			e.Total.String(),
			string(e.Type),
			e.Category,
			e.Description,
			string(items))
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
