// Package syncer keeps the dataset consistent between the local cache and the
// remote document store.
//
// Every mutation is a whole-document read-modify-write: fetch (remote first,
// local cache on failure), apply a pure function, write local then remote.
// There is no locking between writers; the last full document written wins.
package syncer

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/SAP-F-2025/skill-tracker/internal/cache"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories"
)

// BlobCleaner deletes orphaned blob paths without blocking the caller.
type BlobCleaner interface {
	Schedule(ctx context.Context, paths []string)
}

// Change collects side effects of a mutation that are applied only after
// the write succeeds.
type Change struct {
	orphans []string
}

// Orphan marks blob paths that the mutation stopped referencing.
func (c *Change) Orphan(paths ...string) {
	for _, p := range paths {
		if p != "" {
			c.orphans = append(c.orphans, p)
		}
	}
}

func (c *Change) Orphans() []string {
	return c.orphans
}

// Mutation edits ds in place. Returning an error aborts the write.
type Mutation func(ds *models.Dataset, change *Change) error

type Engine struct {
	remote  repositories.DocumentStore
	local   cache.LocalStore
	cleaner BlobCleaner
	logger  *slog.Logger

	mu          sync.RWMutex
	snapshot    *models.Dataset
	listeners   []func(*models.Dataset)
	unsubscribe func()
}

func NewEngine(remote repositories.DocumentStore, local cache.LocalStore, cleaner BlobCleaner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		remote:  remote,
		local:   local,
		cleaner: cleaner,
		logger:  logger,
	}
}

// FetchDataset returns the authoritative dataset: the remote copy when it can
// be read, the local cache otherwise. It never fails.
func (e *Engine) FetchDataset(ctx context.Context) *models.Dataset {
	ds, err := e.remote.FetchDataset(ctx)
	if err == nil {
		e.local.WriteDataset(ctx, ds)
		return ds
	}

	if repositories.IsNotFoundError(err) {
		e.logger.DebugContext(ctx, "Remote dataset row absent, using local cache")
	} else {
		e.logger.WarnContext(ctx, "Remote fetch failed, using local cache", "error", err)
	}
	return e.local.ReadDataset(ctx)
}

// Mutate runs one read-modify-write cycle.
func (e *Engine) Mutate(ctx context.Context, op string, fn Mutation) error {
	return e.run(ctx, op, fn, nil)
}

// MutateVerified is Mutate for destructive changes: after the write the
// document is read back and stillPresent must report false, otherwise the
// local cache is restored to the remote copy and a KindVerification error is
// returned.
func (e *Engine) MutateVerified(ctx context.Context, op string, fn Mutation, stillPresent func(*models.Dataset) bool) error {
	return e.run(ctx, op, fn, stillPresent)
}

func (e *Engine) run(ctx context.Context, op string, fn Mutation, stillPresent func(*models.Dataset) bool) error {
	ds := e.FetchDataset(ctx)
	change := &Change{}
	if err := fn(ds, change); err != nil {
		return &Error{Kind: KindValidation, Op: op, Err: err}
	}

	// local first so the change survives a failed remote write
	e.local.WriteDataset(ctx, ds)

	if err := e.remote.ReplaceDataset(ctx, ds); err != nil {
		kind := KindRemote
		if repositories.IsPolicyRejected(err) {
			kind = KindPolicy
		}
		e.logger.ErrorContext(ctx, "Remote write failed", "op", op, "kind", kind, "error", err)
		return &Error{Kind: kind, Op: op, Err: err}
	}

	if stillPresent != nil {
		if err := e.verify(ctx, op, stillPresent); err != nil {
			return err
		}
	}

	e.setSnapshot(ds)
	if e.cleaner != nil && len(change.orphans) > 0 {
		e.cleaner.Schedule(ctx, change.orphans)
	}
	return nil
}

func (e *Engine) verify(ctx context.Context, op string, stillPresent func(*models.Dataset) bool) error {
	actual, err := e.remote.FetchDataset(ctx)
	switch {
	case repositories.IsNotFoundError(err):
		actual = models.NewDataset()
	case err != nil:
		e.logger.WarnContext(ctx, "Verification read failed, assuming write succeeded", "op", op, "error", err)
		return nil
	}

	if !stillPresent(actual) {
		return nil
	}

	e.logger.ErrorContext(ctx, "Verification found deleted entity still present", "op", op)
	e.local.WriteDataset(ctx, actual)
	e.setSnapshot(actual)
	return &Error{Kind: KindVerification, Op: op, Err: errStillPresent}
}

// Refresh refetches the dataset into the snapshot.
func (e *Engine) Refresh(ctx context.Context) *models.Dataset {
	ds := e.FetchDataset(ctx)
	e.setSnapshot(ds)
	return ds
}

// Watch loads the snapshot and replaces it wholesale on every remote change
// until StopWatching or ctx is done. Calling Watch again replaces the previous
// subscription.
func (e *Engine) Watch(ctx context.Context) error {
	e.StopWatching()
	e.Refresh(ctx)

	unsubscribe, err := e.remote.Subscribe(ctx, func() {
		e.logger.DebugContext(ctx, "Remote dataset changed, refetching")
		e.Refresh(ctx)
	})
	if err != nil {
		return &Error{Kind: KindRemote, Op: "watch", Err: err}
	}

	e.mu.Lock()
	e.unsubscribe = unsubscribe
	e.mu.Unlock()
	return nil
}

func (e *Engine) StopWatching() {
	e.mu.Lock()
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	e.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Snapshot returns a private copy of the last known dataset.
func (e *Engine) Snapshot() *models.Dataset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snapshot == nil {
		return models.NewDataset()
	}
	return e.snapshot.Clone()
}

// OnChange registers fn to receive a copy of every new snapshot.
func (e *Engine) OnChange(fn func(*models.Dataset)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) setSnapshot(ds *models.Dataset) {
	snap := ds.Clone()
	e.mu.Lock()
	e.snapshot = snap
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(snap.Clone())
	}
}
