package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, RunKindScrape, map[string]any{"start": 542500000, "count": 100})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	require.NoError(t, s.CompleteRun(ctx, run.ID, map[string]any{"extracted": 73}))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusComplete, got.Status)
	assert.Contains(t, got.Detail, "73")
	assert.Empty(t, got.Error)
}

func TestSQLiteStore_FailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, RunKindEnrich, nil)
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, assert.AnError))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, assert.AnError.Error(), got.Error)
}

func TestSQLiteStore_UpdateMissingRun(t *testing.T) {
	s := newTestSQLite(t)

	err := s.CompleteRun(context.Background(), "no-such-run", nil)
	require.Error(t, err)
	err = s.FailRun(context.Background(), "no-such-run", assert.AnError)
	require.Error(t, err)
}

func TestSQLiteStore_ListRunsFiltered(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	scrape, err := s.CreateRun(ctx, RunKindScrape, nil)
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, RunKindMerge, nil)
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, scrape.ID, nil))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scrapes, err := s.ListRuns(ctx, RunFilter{Kind: RunKindScrape})
	require.NoError(t, err)
	require.Len(t, scrapes, 1)
	assert.Equal(t, scrape.ID, scrapes[0].ID)

	complete, err := s.ListRuns(ctx, RunFilter{Status: RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, scrape.ID, complete[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
