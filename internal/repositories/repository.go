package repositories

import (
	"context"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

// DocumentStore is the authoritative remote copy of the dataset: a single
// row holding the whole serialized document, plus a change feed.
type DocumentStore interface {
	// FetchDataset reads the current document. A missing row yields ErrNotFound.
	FetchDataset(ctx context.Context) (*models.Dataset, error)

	// ReplaceDataset upserts the whole document under the fixed row id.
	// Permission failures are reported as ErrPolicyRejected.
	ReplaceDataset(ctx context.Context, ds *models.Dataset) error

	// Subscribe registers onChange for every change of the row. Only one
	// subscription is active at a time; subscribing again tears down the
	// previous one. The returned func cancels the subscription.
	Subscribe(ctx context.Context, onChange func()) (func(), error)

	Ping(ctx context.Context) error
	Close() error
}

// Migrator is implemented by stores that own a schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}
