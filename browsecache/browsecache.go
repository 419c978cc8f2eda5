// Package browsecache decorates a uanode.Session with a cache of browse results.
//
// Results are kept in any kv.KV keyed by the browse description, so the same
// decorator works over an in-process LRU, Redis, PostgreSQL, SQLite or a
// layered combination. Store failures are logged and never fail a browse.
package browsecache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	kvpkg "github.com/chenyanchen/kv"
	"github.com/chenyanchen/kv/cachekv"
	"github.com/chenyanchen/kv/layerkv"

	"github.com/chenyanchen/uanode"
)

// Store holds browse results by key.
type Store = kvpkg.KV[string, []uanode.ReferenceDescription]

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Misses int64
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is a uanode.Session whose Browse consults a Store first.
// Read and Write pass through unchanged.
type Session struct {
	uanode.Session

	store  Store
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Wrap returns inner with browse results cached in store.
func Wrap(inner uanode.Session, store Store, opts ...Option) *Session {
	s := &Session{
		Session: inner,
		store:   store,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the store key of desc.
func Key(desc uanode.BrowseDescription) string {
	return desc.NodeID.String() + "|" +
		desc.ReferenceTypeID.String() + "|" +
		strconv.FormatBool(desc.IncludeSubtypes) + "|" +
		strconv.FormatUint(uint64(desc.NodeClassMask), 10)
}

func (s *Session) Browse(ctx context.Context, desc uanode.BrowseDescription) ([]uanode.ReferenceDescription, error) {
	key := Key(desc)
	refs, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		s.hits.Add(1)
		return append([]uanode.ReferenceDescription(nil), refs...), nil
	case !errors.Is(err, kvpkg.ErrNotFound):
		s.logger.Warn("browse cache get failed", "key", key, "err", err)
	}
	s.misses.Add(1)

	refs, err = s.Session.Browse(ctx, desc)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, key, refs); err != nil {
		s.logger.Warn("browse cache set failed", "key", key, "err", err)
	}
	return refs, nil
}

// Invalidate drops the cached result of desc.
func (s *Session) Invalidate(ctx context.Context, desc uanode.BrowseDescription) error {
	return s.store.Del(ctx, Key(desc))
}

// SerializationContext forwards to the wrapped session when it provides one.
func (s *Session) SerializationContext() uanode.SerializationContext {
	if p, ok := s.Session.(uanode.SerializationContextProvider); ok {
		return p.SerializationContext()
	}
	return nil
}

func (s *Session) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// NewMemory returns an in-process LRU store.
func NewMemory(size int, ttl time.Duration) (Store, error) {
	return cachekv.NewLRU[string, []uanode.ReferenceDescription](size, nil, ttl)
}

// Layered returns a store reading front first and falling back to back,
// writing through to both.
func Layered(front, back Store) (Store, error) {
	return layerkv.New[string, []uanode.ReferenceDescription](front, back, layerkv.WithWriteThrough())
}
