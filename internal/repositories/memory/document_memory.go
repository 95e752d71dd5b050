// Package memory is an in-process DocumentStore for development mode and
// tests. Documents are kept serialized so callers never share state with
// the store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories"
)

type DocumentStore struct {
	mu      sync.Mutex
	payload []byte
	present bool
	writes  int

	fetchErr     error
	replaceErr   error
	silentReject bool

	subID    int
	onChange func()
	wg       sync.WaitGroup
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

// Seed stores ds without notifying subscribers.
func (s *DocumentStore) Seed(ds *models.Dataset) error {
	raw, err := ds.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = raw
	s.present = true
	return nil
}

// SetFetchError makes every FetchDataset fail with err until reset with nil.
func (s *DocumentStore) SetFetchError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr = err
}

// SetReplaceError makes every ReplaceDataset fail with err. Errors are
// passed through repositories.ClassifyError like a real driver error.
func (s *DocumentStore) SetReplaceError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceErr = err
}

// SetSilentReject makes ReplaceDataset report success without storing
// anything, the way a row policy can filter an update.
func (s *DocumentStore) SetSilentReject(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silentReject = reject
}

// Clear removes the row.
func (s *DocumentStore) Clear() {
	s.mu.Lock()
	s.payload = nil
	s.present = false
	s.mu.Unlock()
	s.notify()
}

// Writes counts accepted ReplaceDataset calls.
func (s *DocumentStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *DocumentStore) FetchDataset(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	fetchErr, present := s.fetchErr, s.present
	raw := append([]byte(nil), s.payload...)
	s.mu.Unlock()

	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", repositories.ClassifyError(fetchErr))
	}
	if !present {
		return nil, repositories.ErrNotFound
	}
	ds, err := models.DecodeDataset(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return ds, nil
}

func (s *DocumentStore) ReplaceDataset(ctx context.Context, ds *models.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ds == nil {
		ds = models.NewDataset()
	}
	raw, err := ds.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	s.mu.Lock()
	if s.replaceErr != nil {
		err := s.replaceErr
		s.mu.Unlock()
		return fmt.Errorf("failed to replace dataset: %w", repositories.ClassifyError(err))
	}
	if s.silentReject {
		s.mu.Unlock()
		return nil
	}
	s.payload = raw
	s.present = true
	s.writes++
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe replaces any previous subscription. Callbacks run on their own
// goroutine after the write that caused them has been applied.
func (s *DocumentStore) Subscribe(ctx context.Context, onChange func()) (func(), error) {
	if onChange == nil {
		return nil, fmt.Errorf("subscribe: nil callback")
	}
	s.mu.Lock()
	s.subID++
	id := s.subID
	s.onChange = onChange
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.subID == id {
			s.onChange = nil
		}
	}, nil
}

func (s *DocumentStore) notify() {
	s.mu.Lock()
	cb := s.onChange
	s.mu.Unlock()
	if cb == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		cb()
	}()
}

// WaitNotifications blocks until every dispatched callback has returned.
func (s *DocumentStore) WaitNotifications() {
	s.wg.Wait()
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *DocumentStore) Close() error {
	s.mu.Lock()
	s.onChange = nil
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

var _ repositories.DocumentStore = (*DocumentStore)(nil)
