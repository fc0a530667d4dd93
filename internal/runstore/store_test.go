package runstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RequiresInit(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "runs.db"))
	_, err := s.SaveRun(context.Background(), Run{Seed: 1})
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = s.ListRuns(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, s.Close())
}

func TestStore_InitRequiresPath(t *testing.T) {
	assert.Error(t, New("").Init(context.Background()))
}

func TestStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.Init(ctx))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first, err := s.SaveRun(ctx, Run{Seed: 1, Ticks: 600, Dissolutions: 2, Catches: 1, CreatedAt: base})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := s.SaveRun(ctx, Run{Seed: 2, Ticks: 600, Launches: 4, Fallbacks: 1, FinishedPaths: 9, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0])
	assert.Equal(t, first, runs[1])

	runs, err = s.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(2), runs[0].Seed)
}

func TestStore_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	_, err := s.SaveRun(ctx, Run{ID: "fixed"})
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, Run{ID: "fixed"})
	assert.Error(t, err)
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s := New(path)
	require.NoError(t, s.Init(ctx))
	_, err := s.SaveRun(ctx, Run{Seed: 42})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = New(path)
	require.NoError(t, s.Init(ctx))
	defer s.Close()
	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(42), runs[0].Seed)
}
