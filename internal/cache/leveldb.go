package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

const (
	levelBackend = "leveldb"
	blobPrefix   = "blob_"
	blobsMetaKey = "meta_blobs"
)

// LevelDBStore keeps the cache in an on-disk LevelDB database. The dataset
// lives under one key; blobs live under "blob_<id>".
type LevelDBStore struct {
	db     *leveldb.DB
	logger *slog.Logger
	gate   blobGate
}

// NewLevelDBStore opens (or creates) the database at path.
func NewLevelDBStore(path string, logger *slog.Logger) (*LevelDBStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb cache at %s: %w", path, err)
	}
	logger.Info("LevelDB cache opened", "path", path)
	return &LevelDBStore{db: db, logger: logger}, nil
}

func (s *LevelDBStore) ReadDataset(ctx context.Context) *models.Dataset {
	raw, err := s.db.Get([]byte(datasetKey), nil)
	if err != nil {
		if !errors.Is(err, leveldb.ErrNotFound) {
			s.logger.WarnContext(ctx, "Local cache read failed", "backend", levelBackend, "error", err)
		}
		return models.NewDataset()
	}
	return decodeOrEmpty(ctx, s.logger, levelBackend, raw)
}

func (s *LevelDBStore) WriteDataset(ctx context.Context, ds *models.Dataset) {
	raw, ok := encodeForWrite(ctx, s.logger, levelBackend, ds)
	if !ok {
		return
	}
	if err := s.db.Put([]byte(datasetKey), raw, nil); err != nil {
		logWriteFailure(ctx, s.logger, levelBackend, err)
	}
}

func (s *LevelDBStore) InitBlobs(ctx context.Context) error {
	if err := s.db.Put([]byte(blobsMetaKey), []byte("1"), nil); err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}
	s.gate.open()
	return nil
}

func blobKey(id string) []byte {
	return []byte(blobPrefix + id)
}

func (s *LevelDBStore) PutBlob(ctx context.Context, id string, data []byte) error {
	if err := s.gate.check(id, true); err != nil {
		return err
	}
	if err := s.db.Put(blobKey(id), data, nil); err != nil {
		return fmt.Errorf("put blob %s: %w", id, err)
	}
	return nil
}

func (s *LevelDBStore) GetBlob(ctx context.Context, id string) ([]byte, bool, error) {
	if err := s.gate.check(id, true); err != nil {
		return nil, false, err
	}
	data, err := s.db.Get(blobKey(id), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get blob %s: %w", id, err)
	}
	return data, true, nil
}

func (s *LevelDBStore) DeleteBlob(ctx context.Context, id string) error {
	if err := s.gate.check(id, true); err != nil {
		return err
	}
	if err := s.db.Delete(blobKey(id), nil); err != nil {
		return fmt.Errorf("delete blob %s: %w", id, err)
	}
	return nil
}

func (s *LevelDBStore) ListBlobs(ctx context.Context) ([]BlobRecord, error) {
	if err := s.gate.check("", false); err != nil {
		return nil, err
	}
	iter := s.db.NewIterator(util.BytesPrefix([]byte(blobPrefix)), nil)
	defer iter.Release()

	var out []BlobRecord
	for iter.Next() {
		data := make([]byte, len(iter.Value()))
		copy(data, iter.Value())
		out = append(out, BlobRecord{
			ID:   string(iter.Key()[len(blobPrefix):]),
			Data: data,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return out, nil
}

func (s *LevelDBStore) ClearBlobs(ctx context.Context) error {
	if err := s.gate.check("", false); err != nil {
		return err
	}
	iter := s.db.NewIterator(util.BytesPrefix([]byte(blobPrefix)), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("clear blobs: %w", err)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("clear blobs: %w", err)
	}
	return nil
}

func (s *LevelDBStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Info("Closing LevelDB cache")
	return s.db.Close()
}
