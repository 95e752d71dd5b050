package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/skill-tracker/internal/config"
)

// NewLocalStore builds the configured local cache and initializes its blob
// table.
func NewLocalStore(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (LocalStore, error) {
	var store LocalStore
	switch cfg.Driver {
	case "leveldb":
		s, err := NewLevelDBStore(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		store = s
	case "redis":
		client, err := NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		store = NewRedisStore(client, cfg.Redis.Prefix, logger)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	if err := store.InitBlobs(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
