package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

// LocalStore is the client-side persistent cache: one slot holding the whole
// serialized dataset plus a blob table keyed by id.
//
// ReadDataset never fails: absent or unparseable content reads as an empty
// dataset. WriteDataset is best-effort and only logs failures, since the
// remote write is authoritative.
type LocalStore interface {
	ReadDataset(ctx context.Context) *models.Dataset
	WriteDataset(ctx context.Context, ds *models.Dataset)

	// InitBlobs prepares the blob table. It is idempotent and must be called
	// before any other blob operation.
	InitBlobs(ctx context.Context) error
	PutBlob(ctx context.Context, id string, data []byte) error
	GetBlob(ctx context.Context, id string) ([]byte, bool, error)
	DeleteBlob(ctx context.Context, id string) error
	ListBlobs(ctx context.Context) ([]BlobRecord, error)
	ClearBlobs(ctx context.Context) error

	Close() error
}

type BlobRecord struct {
	ID   string
	Data []byte
}

var (
	ErrBlobStoreNotInitialized = errors.New("blob store not initialized")
	ErrEmptyBlobID             = errors.New("blob id must not be empty")
)

const datasetKey = "dataset"

// blobGate tracks whether InitBlobs has run.
type blobGate struct {
	ready atomic.Bool
}

func (g *blobGate) open() { g.ready.Store(true) }

func (g *blobGate) check(id string, needID bool) error {
	if !g.ready.Load() {
		return ErrBlobStoreNotInitialized
	}
	if needID && id == "" {
		return ErrEmptyBlobID
	}
	return nil
}

// decodeOrEmpty turns stored bytes into a dataset, treating corrupt content
// as no data.
func decodeOrEmpty(ctx context.Context, logger *slog.Logger, backend string, raw []byte) *models.Dataset {
	if len(raw) == 0 {
		return models.NewDataset()
	}
	ds, err := models.DecodeDataset(raw)
	if err != nil {
		logger.WarnContext(ctx, "Discarding unreadable cached dataset",
			"backend", backend,
			"error", err)
		return models.NewDataset()
	}
	return ds
}

func encodeForWrite(ctx context.Context, logger *slog.Logger, backend string, ds *models.Dataset) ([]byte, bool) {
	if ds == nil {
		ds = models.NewDataset()
	}
	raw, err := ds.Encode()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to encode dataset for local cache",
			"backend", backend,
			"error", err)
		return nil, false
	}
	return raw, true
}

func logWriteFailure(ctx context.Context, logger *slog.Logger, backend string, err error) {
	logger.ErrorContext(ctx, "Failed to write dataset to local cache",
		"backend", backend,
		"error", err)
}
