package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, Run{
		ID: "run-1", Version: "1.0.0", Mode: "local", Status: StatusSuccess,
		StartedAt: base, FinishedAt: base.Add(2 * time.Second), Nodes: 4, Files: 6,
	}))
	require.NoError(t, store.Record(ctx, Run{
		ID: "run-2", Version: "1.1.0", Mode: "remote", Status: StatusFailed,
		StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Second), Error: "boom",
	}))

	runs, err := store.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, 4, runs[1].Nodes)
	assert.Equal(t, 6, runs[1].Files)
	assert.Empty(t, runs[1].Error)
	assert.Equal(t, 2*time.Second, runs[1].Duration())
	assert.True(t, runs[1].StartedAt.Equal(base))
}

func TestRecentFiltersByVersionAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, v := range []string{"1.0.0", "2.0.0", "1.0.0", "1.0.0"} {
		start := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Record(ctx, Run{
			ID: string(rune('a' + i)), Version: v, Mode: "local", Status: StatusSuccess,
			StartedAt: start, FinishedAt: start,
		}))
	}

	runs, err := store.Recent(ctx, "1.0.0", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "d", runs[0].ID)
	assert.Equal(t, "c", runs[1].ID)
}

func TestRecordReplacesSameRun(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	now := time.Now().UTC()

	run := Run{ID: "x", Version: "1.0.0", Mode: "local", Status: StatusFailed, StartedAt: now, FinishedAt: now}
	require.NoError(t, store.Record(ctx, run))
	run.Status = StatusSuccess
	run.DryRun = true
	require.NoError(t, store.Record(ctx, run))

	runs, err := store.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusSuccess, runs[0].Status)
	assert.True(t, runs[0].DryRun)
}

func TestInMemoryStore(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(t.Context(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
