package browsecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	kvpkg "github.com/chenyanchen/kv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chenyanchen/uanode"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS browse_cache (
    key TEXT PRIMARY KEY,
    refs TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);`

// SQLiteStore keeps browse results in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path (":memory:" works) and
// applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite browse cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite browse cache: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", sqliteSchema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite browse cache: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, k string) ([]uanode.ReferenceDescription, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT refs FROM browse_cache WHERE key = ?`, k).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kvpkg.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var refs []uanode.ReferenceDescription
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func (s *SQLiteStore) Set(ctx context.Context, k string, refs []uanode.ReferenceDescription) error {
	payload, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO browse_cache (key, refs) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET refs = excluded.refs,
    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`, k, string(payload))
	return err
}

func (s *SQLiteStore) Del(ctx context.Context, k string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM browse_cache WHERE key = ?`, k)
	return err
}
