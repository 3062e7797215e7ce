// Package redis adapts a go-redis client to the kv.Store contract.
package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/jacentio/arbor/kv"
)

// delete-if-equals has to run server-side; GET followed by DEL would race
// with a writer reclaiming the key in between.
var deleteIfEquals = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

// Store wraps a Redis client. Any UniversalClient works, so a single node,
// sentinel or cluster deployment can sit behind the same handle.
type Store struct {
	c redis.UniversalClient
}

// New returns a Store backed by c. The caller owns the client's lifecycle.
func New(c redis.UniversalClient) *Store {
	return &Store{c: c}
}

var _ kv.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.c.Set(ctx, key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.c.Del(ctx, key).Err()
}

func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	return s.c.Incr(ctx, key).Result()
}

func (s *Store) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	return s.c.SetNX(ctx, key, value, 0).Result()
}

func (s *Store) DeleteIfEquals(ctx context.Context, key, value string) (bool, error) {
	n, err := deleteIfEquals.Run(ctx, s.c, []string{key}, value).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
