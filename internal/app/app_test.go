package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/skill-tracker/internal/config"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Environment: "test",
		Remote:      config.RemoteConfig{Driver: "memory", DocumentID: 1},
		Cache:       config.CacheConfig{Driver: "leveldb", Path: filepath.Join(dir, "cache")},
		Blob: config.BlobConfig{
			Driver:        "filesystem",
			Root:          filepath.Join(dir, "blobs"),
			Prefix:        "uploads",
			PublicBaseURL: "http://files.test",
		},
		Events: config.EventsConfig{Driver: "memory"},
		Auth:   config.AuthConfig{AdminNationalID: "admin", AdminPassword: "secret"},
	}
}

func TestNew_WiresEverything(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(ctx, testConfig(t), logger, Options{WatchChanges: true})
	require.NoError(t, err)

	require.NoError(t, a.Services.HealthCheck(ctx))

	principal, err := a.Services.Auth().Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, principal.Role)

	require.NoError(t, a.Services.Hospital().UpsertHospital(ctx, &models.Hospital{ID: "h1", Name: "Central"}))
	assert.NotNil(t, a.Engine.FetchDataset(ctx).Hospital("h1"))

	require.NoError(t, a.Close(ctx))
	assert.Error(t, a.Services.HealthCheck(ctx))
	// closing twice is harmless
	require.NoError(t, a.Close(ctx))
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Blob.Driver = "ftp"

	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown blob driver")
}
