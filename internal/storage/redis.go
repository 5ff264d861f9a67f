package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/and161185/movie-admin/internal/errs"
	"github.com/and161185/movie-admin/internal/session"
)

// RedisStorage keeps the record under a fixed key, for hosts where several
// shells share one login.
type RedisStorage struct {
	rdb *redis.Client
	key string
}

var _ session.Storage = (*RedisStorage)(nil)

// NewRedisStorage stores the record at "movie-admin:session:<profile>".
func NewRedisStorage(rdb *redis.Client, profile string) *RedisStorage {
	if profile == "" {
		profile = "default"
	}
	return &RedisStorage{rdb: rdb, key: "movie-admin:" + RecordName + ":" + profile}
}

// Key returns the Redis key in use.
func (r *RedisStorage) Key() string { return r.key }

func (r *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

func (r *RedisStorage) Save(ctx context.Context, record []byte) error {
	return r.rdb.Set(ctx, r.key, record, 0).Err()
}

func (r *RedisStorage) Remove(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}
