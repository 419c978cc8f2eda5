package browsecache

import (
	"context"
	"encoding/json"
	"errors"

	kvpkg "github.com/chenyanchen/kv"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chenyanchen/uanode"
)

// EnsureSchema creates the browse cache table.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS uanode_browse_cache (
    key TEXT PRIMARY KEY,
    refs JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`)
	return err
}

// PostgresStore keeps browse results in a JSONB column.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func (s *PostgresStore) Get(ctx context.Context, k string) ([]uanode.ReferenceDescription, error) {
	var raw []byte
	err := s.Pool.QueryRow(ctx, `SELECT refs FROM uanode_browse_cache WHERE key=$1`, k).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, kvpkg.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var refs []uanode.ReferenceDescription
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func (s *PostgresStore) Set(ctx context.Context, k string, refs []uanode.ReferenceDescription) error {
	payload, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
INSERT INTO uanode_browse_cache (key, refs, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET refs=EXCLUDED.refs, updated_at=EXCLUDED.updated_at`, k, payload)
	return err
}

func (s *PostgresStore) Del(ctx context.Context, k string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM uanode_browse_cache WHERE key=$1`, k)
	return err
}
