package readstate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nhle/pmwatch/internal/model"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store selected by cfg. The returned closer releases the
// store's connections and must be called when the store is no longer used.
func Open(ctx context.Context, cfg model.ReadStateConfig, log *zap.Logger) (Store, io.Closer, error) {
	key := cfg.Key
	if key == "" {
		key = model.DefaultReadStateKey
	}

	switch cfg.Driver {
	case model.ReadStateMemory:
		return NewMemoryStore(), nopCloser{}, nil

	case model.ReadStateFile, "":
		return NewFileStore(cfg.StorePath(), log), nopCloser{}, nil

	case model.ReadStateSQLite:
		path := cfg.StorePath()
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating read-state directory: %w", err)
			}
		}
		s, err := NewSQLiteStore(path, key, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case model.ReadStateRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(rdb, key, log), rdb, nil

	default:
		return nil, nil, fmt.Errorf("unknown read state driver %q", cfg.Driver)
	}
}
