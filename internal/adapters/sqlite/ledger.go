// Package sqlite provides a SQLite-backed dedup ledger.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/bft-labs/herald/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS sent (
	phone      TEXT PRIMARY KEY,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

// Ledger implements ports.Ledger on a single SQLite table.
type Ledger struct {
	db *sql.DB

	mu   sync.Mutex
	sent map[string]struct{}
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Ledger{db: db, sent: make(map[string]struct{})}, nil
}

// Load reads every recorded phone into memory.
func (l *Ledger) Load(ctx context.Context) error {
	rows, err := l.db.QueryContext(ctx, `SELECT phone FROM sent`)
	if err != nil {
		return err
	}
	defer rows.Close()

	l.mu.Lock()
	defer l.mu.Unlock()
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return err
		}
		l.sent[domain.NormalizePhone(phone)] = struct{}{}
	}
	return rows.Err()
}

// Contains reports whether phone has been recorded.
func (l *Ledger) Contains(phone string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.sent[domain.NormalizePhone(phone)]
	return ok
}

// Record inserts phone, ignoring duplicates.
func (l *Ledger) Record(ctx context.Context, phone string) error {
	phone = domain.NormalizePhone(phone)
	if phone == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.db.ExecContext(ctx, `INSERT OR IGNORE INTO sent(phone) VALUES(?)`, phone); err != nil {
		return err
	}
	l.sent[phone] = struct{}{}
	return nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
