package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(tempDir, "journal.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewStore(dataDir)
	require.NoError(t, err)
	defer store.Close()

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStore_MigrationsRunOnce(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	_, err = store.JournalStore().Record(context.Background(), domain.SyncRun{SourcePath: "a.novx"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(tempDir)
	require.NoError(t, err)
	defer reopened.Close()

	var version int
	require.NoError(t, reopened.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	runs, err := reopened.JournalStore().List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "reopening keeps the journal")
}

func TestJournalStore_RecordAndList(t *testing.T) {
	store := setupTestStore(t)
	journal := store.JournalStore()
	ctx := context.Background()
	started := time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)

	run := domain.SyncRun{
		Direction:  domain.DirectionExport,
		SourcePath: "/novels/demo.novx",
		TargetPath: "/novels/demo.aeonzip",
		StartedAt:  started,
		Duration:   1500 * time.Millisecond,
		Written:    true,
		Created:    3,
		Updated:    2,
		Deleted:    1,
	}
	id, err := journal.Record(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = journal.Record(ctx, domain.SyncRun{
		Direction:  domain.DirectionImport,
		SourcePath: "/novels/demo.aeonzip",
		TargetPath: "/novels/demo.novx",
		StartedAt:  started.Add(time.Minute),
		Error:      "project is locked",
	})
	require.NoError(t, err)

	runs, err := journal.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, domain.DirectionImport, runs[0].Direction)
	assert.False(t, runs[0].Succeeded())

	got := runs[1]
	run.ID = 1
	assert.Equal(t, run.Direction, got.Direction)
	assert.Equal(t, run.SourcePath, got.SourcePath)
	assert.Equal(t, run.TargetPath, got.TargetPath)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, run.Duration, got.Duration)
	assert.True(t, got.Written)
	assert.Equal(t, []int{3, 2, 1}, []int{got.Created, got.Updated, got.Deleted})
	assert.True(t, got.Succeeded())

	limited, err := journal.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(2), limited[0].ID)
}

func TestJournalStore_List_Empty(t *testing.T) {
	runs, err := setupTestStore(t).JournalStore().List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestJournalStore_Last(t *testing.T) {
	store := setupTestStore(t)
	journal := store.JournalStore()
	ctx := context.Background()

	_, err := journal.Last(ctx, "/novels/demo.novx")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	for _, created := range []int{1, 2} {
		_, err := journal.Record(ctx, domain.SyncRun{SourcePath: "/novels/demo.novx", Created: created, StartedAt: time.Now()})
		require.NoError(t, err)
	}
	_, err = journal.Record(ctx, domain.SyncRun{SourcePath: "/novels/other.novx", StartedAt: time.Now()})
	require.NoError(t, err)

	last, err := journal.Last(ctx, "/novels/demo.novx")
	require.NoError(t, err)
	assert.Equal(t, 2, last.Created)
}

func TestJournalStore_ContextCancelled(t *testing.T) {
	journal := setupTestStore(t).JournalStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := journal.Record(ctx, domain.SyncRun{SourcePath: "x", StartedAt: time.Now()})
	assert.Error(t, err)
}
