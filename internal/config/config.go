package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "SKILLTRACKER"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Log         LogConfig      `mapstructure:"log"`
	Database    DatabaseConfig `mapstructure:"database"`
	Remote      RemoteConfig   `mapstructure:"remote"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Blob        BlobConfig     `mapstructure:"blob"`
	Events      EventsConfig   `mapstructure:"events"`
	Auth        AuthConfig     `mapstructure:"auth"`

	// LogLevel is derived from Log.Level after loading
	LogLevel slog.Level `mapstructure:"-"`
}

type ServerConfig struct {
	Port            string   `mapstructure:"port"`
	ShutdownSeconds int      `mapstructure:"shutdown_seconds"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   LogFileConfig `mapstructure:"file"`
}

type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type DatabaseConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes"`
}

// RemoteConfig selects the authoritative document store.
type RemoteConfig struct {
	Driver        string `mapstructure:"driver"` // postgres | memory
	DocumentID    int    `mapstructure:"document_id"`
	NotifyChannel string `mapstructure:"notify_channel"`
}

// CacheConfig selects the local cache backend.
type CacheConfig struct {
	Driver string      `mapstructure:"driver"` // leveldb | redis
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type BlobConfig struct {
	Driver        string   `mapstructure:"driver"` // s3 | filesystem
	Bucket        string   `mapstructure:"bucket"`
	Prefix        string   `mapstructure:"prefix"`
	PublicBaseURL string   `mapstructure:"public_base_url"`
	Root          string   `mapstructure:"root"`
	S3            S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// EventsConfig selects the transport of the background blob-cleanup queue.
type EventsConfig struct {
	Driver        string   `mapstructure:"driver"` // memory | kafka
	Brokers       []string `mapstructure:"brokers"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
}

type AuthConfig struct {
	AdminNationalID string `mapstructure:"admin_national_id"`
	AdminPassword   string `mapstructure:"admin_password"`
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	if s.ShutdownSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ShutdownSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_seconds", 30)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file.path", "logs/skill-tracker.log")
	v.SetDefault("log.file.max_size_mb", 50)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	// keys without a default are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("database.dsn", "")
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("blob.public_base_url", "")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.region", "us-east-1")
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 30)
	v.SetDefault("remote.driver", "postgres")
	v.SetDefault("remote.document_id", 1)
	v.SetDefault("remote.notify_channel", "app_state_changes")
	v.SetDefault("cache.driver", "leveldb")
	v.SetDefault("cache.path", "data/cache")
	v.SetDefault("cache.redis.prefix", "skilltracker:")
	v.SetDefault("blob.driver", "filesystem")
	v.SetDefault("blob.bucket", "files")
	v.SetDefault("blob.prefix", "uploads")
	v.SetDefault("blob.root", "data/blobs")
	v.SetDefault("events.driver", "memory")
	v.SetDefault("events.consumer_group", "skill-tracker")
	v.SetDefault("auth.admin_national_id", "admin")
	v.SetDefault("auth.admin_password", "admin")
}

// LoadConfig reads .env (when present), then config.yaml from configPath and
// environment overrides such as SKILLTRACKER_DATABASE_DSN.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(ConfigName)
	v.SetConfigType(ConfigFormat)
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.LogLevel = ParseLevel(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks driver names and the settings each driver needs.
func (c *Config) Validate() error {
	var errs []error

	switch c.Remote.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for the postgres remote"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown remote.driver %q", c.Remote.Driver))
	}
	if c.Remote.DocumentID <= 0 {
		errs = append(errs, errors.New("remote.document_id must be positive"))
	}

	switch c.Cache.Driver {
	case "leveldb":
		if c.Cache.Path == "" {
			errs = append(errs, errors.New("cache.path is required for leveldb"))
		}
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.driver %q", c.Cache.Driver))
	}

	switch c.Blob.Driver {
	case "s3":
		if c.Blob.Bucket == "" || c.Blob.S3.Endpoint == "" {
			errs = append(errs, errors.New("blob.bucket and blob.s3.endpoint are required for s3"))
		}
	case "filesystem":
		if c.Blob.Root == "" {
			errs = append(errs, errors.New("blob.root is required for filesystem"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob.driver %q", c.Blob.Driver))
	}

	switch c.Events.Driver {
	case "memory":
	case "kafka":
		if len(c.Events.Brokers) == 0 {
			errs = append(errs, errors.New("events.brokers is required for kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events.driver %q", c.Events.Driver))
	}

	if c.Auth.AdminNationalID == "" || c.Auth.AdminPassword == "" {
		errs = append(errs, errors.New("auth admin credentials must not be empty"))
	}

	return errors.Join(errs...)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
