// Package app assembles the process: remote store, local cache, blob storage,
// cleanup worker, sync engine and services. Commands build one App and close
// it on exit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/skill-tracker/internal/auth"
	"github.com/SAP-F-2025/skill-tracker/internal/blob"
	"github.com/SAP-F-2025/skill-tracker/internal/cache"
	"github.com/SAP-F-2025/skill-tracker/internal/config"
	"github.com/SAP-F-2025/skill-tracker/internal/events"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories/memory"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories/postgres"
	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type Options struct {
	// WatchChanges subscribes the engine to the remote change feed.
	WatchChanges bool
}

type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Remote    repositories.DocumentStore
	Local     cache.LocalStore
	Storage   *blob.Storage
	Cleaner   *blob.Cleaner
	Engine    *syncer.Engine
	Validator *validator.Validator
	Policy    *auth.Policy
	Services  services.ServiceManager

	// closed in reverse order
	closers []closer
}

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

// NewRemote opens the configured remote document store.
func NewRemote(cfg *config.Config, logger *slog.Logger) (repositories.DocumentStore, error) {
	switch cfg.Remote.Driver {
	case "memory":
		logger.Warn("Using in-memory remote store, data is lost on exit")
		return memory.NewDocumentStore(), nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgres.NewDocumentPostgreSQL(postgres.StoreConfig{
			DB:            db,
			DSN:           cfg.Database.DSN,
			DocumentID:    cfg.Remote.DocumentID,
			NotifyChannel: cfg.Remote.NotifyChannel,
			Logger:        logger.With("component", "remote"),
		}), nil
	}
	return nil, fmt.Errorf("unknown remote driver %q", cfg.Remote.Driver)
}

// NewBlobBackend builds the object store selected by cfg.Driver.
func NewBlobBackend(ctx context.Context, cfg config.BlobConfig) (blob.Backend, error) {
	switch cfg.Driver {
	case "filesystem":
		b, err := blob.NewFSBackend(cfg.Root, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "s3":
		b, err := blob.NewS3Backend(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	if err := a.build(ctx, opts); err != nil {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Warn("Cleanup after failed startup", "error", cerr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, opts Options) error {
	var err error

	a.Remote, err = NewRemote(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open remote store: %w", err)
	}
	a.onClose("remote store", func(context.Context) error { return a.Remote.Close() })

	a.Local, err = cache.NewLocalStore(ctx, a.Config.Cache, a.Logger.With("component", "cache"))
	if err != nil {
		return fmt.Errorf("failed to open local cache: %w", err)
	}
	a.onClose("local cache", func(context.Context) error { return a.Local.Close() })

	backend, err := NewBlobBackend(ctx, a.Config.Blob)
	if err != nil {
		return fmt.Errorf("failed to open blob storage: %w", err)
	}
	a.Storage = blob.NewStorage(backend, a.Local, a.Config.Blob.Prefix, a.Logger.With("component", "blob"))

	transport, err := events.NewTransport(a.Config.Events, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open event transport: %w", err)
	}
	a.onClose("event transport", func(context.Context) error { return transport.Close() })

	publisher := events.NewWatermillPublisher(transport.Publisher, a.Logger)
	a.Cleaner = blob.NewCleaner(publisher, transport.Subscriber, a.Storage, a.Logger.With("component", "cleanup"))
	if err := a.Cleaner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start blob cleanup worker: %w", err)
	}
	a.onClose("blob cleanup worker", func(ctx context.Context) error {
		// let scheduled deletions finish before the transport goes away
		if err := a.Cleaner.Wait(ctx); err != nil {
			a.Logger.Warn("Pending blob cleanup abandoned", "error", err)
		}
		return a.Cleaner.Close()
	})

	a.Engine = syncer.NewEngine(a.Remote, a.Local, a.Cleaner, a.Logger.With("component", "syncer"))

	a.Policy, err = auth.NewPolicy()
	if err != nil {
		return fmt.Errorf("failed to load access policy: %w", err)
	}
	a.Validator = validator.New()

	a.Services = services.NewServiceManager(services.Dependencies{
		Engine:    a.Engine,
		Blobs:     a.Storage,
		Cleaner:   a.Cleaner,
		Resolver:  auth.NewResolver(a.Config.Auth),
		Validator: a.Validator,
		Logger:    a.Logger,
	}, a.Remote, services.ServiceManagerConfig{WatchChanges: opts.WatchChanges})
	if err := a.Services.Initialize(ctx); err != nil {
		return err
	}
	a.onClose("services", a.Services.Shutdown)
	return nil
}

func (a *App) onClose(name string, fn func(ctx context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Close releases everything New opened, newest first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		a.Logger.Debug("Closing", "component", c.name)
		if err := c.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
