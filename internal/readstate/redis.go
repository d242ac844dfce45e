package readstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps the slot in a single Redis string key, so several
// terminals on one profile share read state.
type RedisStore struct {
	rdb *redis.Client
	key string
	log *zap.Logger
}

// NewRedisStore returns a store using key on rdb.
func NewRedisStore(rdb *redis.Client, key string, log *zap.Logger) *RedisStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{rdb: rdb, key: key, log: log}
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context) Set {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("reading read state, starting empty",
				zap.String("key", r.key), zap.Error(err))
		}
		return NewSet()
	}

	s, err := decode(data)
	if err != nil {
		r.log.Warn("corrupt read state, starting empty",
			zap.String("key", r.key), zap.Error(err))
		return NewSet()
	}
	return s
}

// Save implements Store. The key never expires.
func (r *RedisStore) Save(ctx context.Context, s Set) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("saving read state %s: %w", r.key, err)
	}
	return nil
}
