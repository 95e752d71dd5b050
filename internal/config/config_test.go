package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SKILLTRACKER_REMOTE_DRIVER", "memory")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Remote.Driver)
	assert.Equal(t, 1, cfg.Remote.DocumentID)
	assert.Equal(t, "leveldb", cfg.Cache.Driver)
	assert.Equal(t, "filesystem", cfg.Blob.Driver)
	assert.Equal(t, "memory", cfg.Events.Driver)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := `
remote:
  driver: postgres
database:
  dsn: postgres://file
log:
  level: debug
blob:
  driver: s3
  bucket: materials
  s3:
    endpoint: http://localhost:9000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SKILLTRACKER_DATABASE_DSN", "postgres://env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, "materials", cfg.Blob.Bucket)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Remote: RemoteConfig{Driver: "memory", DocumentID: 1},
			Cache:  CacheConfig{Driver: "leveldb", Path: "x"},
			Blob:   BlobConfig{Driver: "filesystem", Root: "y"},
			Events: EventsConfig{Driver: "memory"},
			Auth:   AuthConfig{AdminNationalID: "admin", AdminPassword: "pw"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Remote.Driver = "postgres" }, wantErr: true},
		{name: "unknown cache driver", mutate: func(c *Config) { c.Cache.Driver = "bolt" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Cache.Driver = "redis" }, wantErr: true},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Events.Driver = "kafka" }, wantErr: true},
		{name: "empty admin password", mutate: func(c *Config) { c.Auth.AdminPassword = "" }, wantErr: true},
		{name: "zero document id", mutate: func(c *Config) { c.Remote.DocumentID = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
