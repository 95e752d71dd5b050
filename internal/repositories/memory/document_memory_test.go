package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories"
)

func TestDocumentStore_FetchAndReplace(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	_, err := s.FetchDataset(ctx)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	in := &models.Dataset{Hospitals: []models.Hospital{{ID: "h1", Name: "Sina"}}}
	require.NoError(t, s.ReplaceDataset(ctx, in))

	in.Hospitals[0].Name = "mutated after write"
	out, err := s.FetchDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sina", out.Hospitals[0].Name)
	assert.Equal(t, 1, s.Writes())

	s.Clear()
	_, err = s.FetchDataset(ctx)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDocumentStore_FaultInjection(t *testing.T) {
	ctx := context.Background()
	ds := &models.Dataset{Hospitals: []models.Hospital{{ID: "h1"}}}

	t.Run("fetch error", func(t *testing.T) {
		s := NewDocumentStore()
		s.SetFetchError(errors.New("offline"))
		_, err := s.FetchDataset(ctx)
		require.Error(t, err)
		assert.False(t, repositories.IsNotFoundError(err))
	})

	t.Run("policy error is classified", func(t *testing.T) {
		s := NewDocumentStore()
		s.SetReplaceError(errors.New("new row violates row-level security policy"))
		err := s.ReplaceDataset(ctx, ds)
		assert.True(t, repositories.IsPolicyRejected(err))
	})

	t.Run("silent reject", func(t *testing.T) {
		s := NewDocumentStore()
		require.NoError(t, s.Seed(models.NewDataset()))
		s.SetSilentReject(true)
		require.NoError(t, s.ReplaceDataset(ctx, ds))
		out, err := s.FetchDataset(ctx)
		require.NoError(t, err)
		assert.True(t, out.IsEmpty())
	})
}

func TestDocumentStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	var first, second atomic.Int32
	unsubFirst, err := s.Subscribe(ctx, func() { first.Add(1) })
	require.NoError(t, err)

	require.NoError(t, s.ReplaceDataset(ctx, models.NewDataset()))
	s.WaitNotifications()
	assert.Equal(t, int32(1), first.Load())

	_, err = s.Subscribe(ctx, func() { second.Add(1) })
	require.NoError(t, err)
	unsubFirst() // stale, must not cancel the second subscription

	require.NoError(t, s.ReplaceDataset(ctx, models.NewDataset()))
	s.WaitNotifications()
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())
}
