package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/SAP-F-2025/skill-tracker/internal/config"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories"
)

// DocumentPostgreSQL stores the dataset as one jsonb row of app_state.
type DocumentPostgreSQL struct {
	db            *gorm.DB
	documentID    int
	dsn           string
	notifyChannel string
	logger        *slog.Logger

	// newListener is swapped in tests
	newListener listenerFactory

	mu     sync.Mutex
	active *subscription
}

type StoreConfig struct {
	DB            *gorm.DB
	DSN           string
	DocumentID    int
	NotifyChannel string
	Logger        *slog.Logger
}

func NewDocumentPostgreSQL(cfg StoreConfig) *DocumentPostgreSQL {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := cfg.DocumentID
	if id <= 0 {
		id = models.DefaultDocumentID
	}
	return &DocumentPostgreSQL{
		db:            cfg.DB,
		documentID:    id,
		dsn:           cfg.DSN,
		notifyChannel: cfg.NotifyChannel,
		logger:        logger,
		newListener:   newPQListener,
	}
}

// OpenDB opens the gorm connection pool described by cfg.
func OpenDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

func (r *DocumentPostgreSQL) FetchDataset(ctx context.Context) (*models.Dataset, error) {
	var doc models.DatasetDocument
	err := r.db.WithContext(ctx).
		Where("id = ?", r.documentID).
		Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch dataset: %w", repositories.ClassifyError(err))
	}

	ds, err := models.DecodeDataset(doc.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset row %d: %w", r.documentID, err)
	}
	return ds, nil
}

const upsertSQL = `INSERT INTO app_state (id, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

func (r *DocumentPostgreSQL) ReplaceDataset(ctx context.Context, ds *models.Dataset) error {
	if ds == nil {
		ds = models.NewDataset()
	}
	payload, err := ds.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	result := r.db.WithContext(ctx).Exec(upsertSQL, r.documentID, string(payload), time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to replace dataset: %w", repositories.ClassifyError(result.Error))
	}
	// an update filtered out by a row policy reports success with no rows
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to replace dataset row %d: %w", r.documentID, repositories.ErrPolicyRejected)
	}
	return nil
}

func (r *DocumentPostgreSQL) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (r *DocumentPostgreSQL) Close() error {
	r.mu.Lock()
	if r.active != nil {
		r.active.stop()
		r.active = nil
	}
	r.mu.Unlock()

	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
