package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/chenyanchen/uanode"
	"github.com/chenyanchen/uanode/browsecache"
)

type closer struct {
	name  string
	close func() error
}

// Runtime is a Client together with the backends opened for it.
type Runtime struct {
	Client  *uanode.Client
	Session uanode.Session
	Logger  *slog.Logger

	// Cache is the browse cache decorator, nil when the driver is none.
	Cache *browsecache.Session

	closeOnce sync.Once
	closeErr  error
	closers   []closer
}

// Open validates cfg, opens its browse cache backend around session and
// builds a Client. opts are applied after the options derived from cfg.
func Open(ctx context.Context, cfg Config, session uanode.Session, opts ...uanode.Option) (*Runtime, error) {
	if session == nil {
		return nil, errors.New("open runtime: session is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Session: session, Logger: logger}
	store, err := rt.openStore(ctx, cfg.BrowseCache)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	if store != nil {
		rt.Cache = browsecache.Wrap(session, store, browsecache.WithLogger(logger))
		rt.Session = rt.Cache
		logger.Debug("browse cache enabled", "driver", cfg.BrowseCache.Driver)
	}

	clientOpts := []uanode.Option{
		uanode.WithLogger(logger),
		uanode.WithNodeCache(cfg.NodeCache.Size, cfg.NodeCache.TTL),
	}
	if cfg.SessionID != "" {
		clientOpts = append(clientOpts, uanode.WithSessionID(cfg.SessionID))
	}
	client, err := uanode.NewClient(rt.Session, append(clientOpts, opts...)...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("open runtime: %w", err)
	}
	rt.Client = client
	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context, bc BrowseCache) (browsecache.Store, error) {
	var back browsecache.Store
	switch bc.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverMemory:
		store, err := browsecache.NewMemory(bc.Size, bc.TTL)
		if err != nil {
			return nil, fmt.Errorf("open memory browse cache: %w", err)
		}
		return store, nil
	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: bc.Addr, DB: bc.DB})
		rt.onClose("redis", client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis browse cache %s: %w", bc.Addr, err)
		}
		back = &browsecache.RedisStore{Client: client, Prefix: bc.Prefix, TTL: bc.TTL}
	case DriverPostgres:
		pool, err := pgxpool.New(ctx, bc.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres browse cache: %w", err)
		}
		rt.onClose("postgres", func() error { pool.Close(); return nil })
		if err := browsecache.EnsureSchema(ctx, pool); err != nil {
			return nil, fmt.Errorf("postgres browse cache schema: %w", err)
		}
		back = &browsecache.PostgresStore{Pool: pool}
	case DriverSQLite:
		store, err := browsecache.OpenSQLite(bc.Path)
		if err != nil {
			return nil, err
		}
		rt.onClose("sqlite", store.Close)
		back = store
	default:
		return nil, fmt.Errorf("unknown browse cache driver %q", bc.Driver)
	}

	if bc.FrontSize <= 0 {
		return back, nil
	}
	front, err := browsecache.NewMemory(bc.FrontSize, bc.TTL)
	if err != nil {
		return nil, fmt.Errorf("open browse cache front: %w", err)
	}
	return browsecache.Layered(front, back)
}

func (rt *Runtime) onClose(name string, fn func() error) {
	rt.closers = append(rt.closers, closer{name: name, close: fn})
}

// Close releases backends in reverse open order. Later calls return the
// first result.
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		var errs []error
		for i := len(rt.closers) - 1; i >= 0; i-- {
			c := rt.closers[i]
			if err := c.close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
			}
		}
		rt.closeErr = errors.Join(errs...)
	})
	return rt.closeErr
}
