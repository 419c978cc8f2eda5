// Package config loads client settings from YAML and opens the runtime they describe.
//
//	session_id: plant-a
//	log_level: debug
//	node_cache:
//	  size: 4096
//	  ttl: 5m
//	browse_cache:
//	  driver: redis
//	  addr: localhost:6379
//	  prefix: uanode
//	  ttl: 10m
//	  front_size: 256
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chenyanchen/uanode"
)

// Browse cache drivers.
const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	DefaultBrowseCacheSize = 512
	DefaultBrowseCacheTTL  = 10 * time.Minute
	DefaultRedisPrefix     = "uanode:browse"
)

type Config struct {
	SessionID   string      `yaml:"session_id"`
	LogLevel    string      `yaml:"log_level"`
	NodeCache   NodeCache   `yaml:"node_cache"`
	BrowseCache BrowseCache `yaml:"browse_cache"`

	// LogOutput receives log lines; stderr when nil.
	LogOutput io.Writer `yaml:"-"`
}

type NodeCache struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// BrowseCache selects where browse results are cached. Fields not used by
// the chosen driver are ignored.
type BrowseCache struct {
	Driver string        `yaml:"driver"`
	Size   int           `yaml:"size"`
	TTL    time.Duration `yaml:"ttl"`

	// FrontSize, when positive, puts an in-process LRU of that size in
	// front of a redis, postgres or sqlite store.
	FrontSize int `yaml:"front_size"`

	Addr   string `yaml:"addr"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix"`
	DSN    string `yaml:"dsn"`
	Path   string `yaml:"path"`
}

// Default returns the configuration used for omitted fields.
func Default() Config {
	return Config{
		LogLevel: "info",
		NodeCache: NodeCache{
			Size: uanode.DefaultNodeCacheSize,
			TTL:  uanode.DefaultNodeCacheTTL,
		},
		BrowseCache: BrowseCache{
			Driver: DriverNone,
			Size:   DefaultBrowseCacheSize,
			TTL:    DefaultBrowseCacheTTL,
			Prefix: DefaultRedisPrefix,
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(payload)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes payload over Default and validates the result. Unknown keys
// are rejected.
func Parse(payload []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(payload))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.NodeCache.Size <= 0 {
		errs = append(errs, fmt.Errorf("node_cache.size must be positive, got %d", c.NodeCache.Size))
	}
	if c.NodeCache.TTL < 0 {
		errs = append(errs, fmt.Errorf("node_cache.ttl must not be negative, got %s", c.NodeCache.TTL))
	}

	bc := c.BrowseCache
	switch bc.Driver {
	case "", DriverNone:
	case DriverMemory:
		if bc.Size <= 0 {
			errs = append(errs, fmt.Errorf("browse_cache.size must be positive, got %d", bc.Size))
		}
	case DriverRedis:
		if bc.Addr == "" {
			errs = append(errs, errors.New("browse_cache.addr is required for the redis driver"))
		}
	case DriverPostgres:
		if bc.DSN == "" {
			errs = append(errs, errors.New("browse_cache.dsn is required for the postgres driver"))
		}
	case DriverSQLite:
		if bc.Path == "" {
			errs = append(errs, errors.New("browse_cache.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("browse_cache.driver %q is not one of none, memory, redis, postgres, sqlite", bc.Driver))
	}
	if bc.TTL < 0 {
		errs = append(errs, fmt.Errorf("browse_cache.ttl must not be negative, got %s", bc.TTL))
	}
	if bc.FrontSize < 0 {
		errs = append(errs, fmt.Errorf("browse_cache.front_size must not be negative, got %d", bc.FrontSize))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level parses LogLevel; empty means info.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Logger returns a text logger at the configured level.
func (c Config) Logger() (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	out := c.LogOutput
	if out == nil {
		out = os.Stderr
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}
