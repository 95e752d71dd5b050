package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

const redisBackend = "redis"

// RedisStore keeps the local cache in redis, for deployments where several
// server processes share one cache.
type RedisStore struct {
	client *redis.Client
	helper *CacheHelper
	logger *slog.Logger
	gate   blobGate
}

func NewRedisStore(client *redis.Client, prefix string, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client: client,
		helper: NewCacheHelper(client, prefix),
		logger: logger,
	}
}

// NewRedisClient dials redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore) ReadDataset(ctx context.Context) *models.Dataset {
	raw, err := s.helper.GetBytes(ctx, datasetKey)
	if err != nil {
		if !errors.Is(err, ErrCacheNotFound) {
			s.logger.WarnContext(ctx, "Local cache read failed", "backend", redisBackend, "error", err)
		}
		return models.NewDataset()
	}
	return decodeOrEmpty(ctx, s.logger, redisBackend, raw)
}

func (s *RedisStore) WriteDataset(ctx context.Context, ds *models.Dataset) {
	raw, ok := encodeForWrite(ctx, s.logger, redisBackend, ds)
	if !ok {
		return
	}
	if err := s.helper.SetBytes(ctx, datasetKey, raw); err != nil {
		logWriteFailure(ctx, s.logger, redisBackend, err)
	}
}

func (s *RedisStore) InitBlobs(ctx context.Context) error {
	if err := s.helper.HealthCheck(ctx); err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}
	s.gate.open()
	return nil
}

func redisBlobKey(id string) string {
	return blobPrefix + id
}

func (s *RedisStore) PutBlob(ctx context.Context, id string, data []byte) error {
	if err := s.gate.check(id, true); err != nil {
		return err
	}
	if err := s.helper.SetBytes(ctx, redisBlobKey(id), data); err != nil {
		return fmt.Errorf("put blob %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) GetBlob(ctx context.Context, id string) ([]byte, bool, error) {
	if err := s.gate.check(id, true); err != nil {
		return nil, false, err
	}
	data, err := s.helper.GetBytes(ctx, redisBlobKey(id))
	if err != nil {
		if errors.Is(err, ErrCacheNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get blob %s: %w", id, err)
	}
	return data, true, nil
}

func (s *RedisStore) DeleteBlob(ctx context.Context, id string) error {
	if err := s.gate.check(id, true); err != nil {
		return err
	}
	if err := s.helper.Delete(ctx, redisBlobKey(id)); err != nil {
		return fmt.Errorf("delete blob %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) ListBlobs(ctx context.Context) ([]BlobRecord, error) {
	if err := s.gate.check("", false); err != nil {
		return nil, err
	}
	keys, err := s.helper.ScanKeys(ctx, blobPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	values, err := s.helper.GetMultiple(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	out := make([]BlobRecord, 0, len(values))
	for _, k := range keys {
		data, ok := values[k]
		if !ok {
			continue
		}
		out = append(out, BlobRecord{ID: k[len(blobPrefix):], Data: data})
	}
	return out, nil
}

func (s *RedisStore) ClearBlobs(ctx context.Context) error {
	if err := s.gate.check("", false); err != nil {
		return err
	}
	if err := s.helper.InvalidatePattern(ctx, blobPrefix+"*"); err != nil {
		return fmt.Errorf("clear blobs: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
