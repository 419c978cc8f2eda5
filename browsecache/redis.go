package browsecache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kvpkg "github.com/chenyanchen/kv"
	"github.com/redis/go-redis/v9"

	"github.com/chenyanchen/uanode"
)

// RedisStore keeps browse results as JSON strings in Redis.
type RedisStore struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func (s *RedisStore) key(k string) string {
	return s.Prefix + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, k string) ([]uanode.ReferenceDescription, error) {
	raw, err := s.Client.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
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

func (s *RedisStore) Set(ctx context.Context, k string, refs []uanode.ReferenceDescription) error {
	payload, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.key(k), payload, s.TTL).Err()
}

func (s *RedisStore) Del(ctx context.Context, k string) error {
	return s.Client.Del(ctx, s.key(k)).Err()
}
