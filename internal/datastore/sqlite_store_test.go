package datastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStateStore {
	t.Helper()
	store, err := NewSQLiteStateStore(config.StorageConfig{
		SQLiteDBPath: filepath.Join(t.TempDir(), "state.db"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStateStore_Get_Missing(t *testing.T) {
	store := newTestStore(t)

	state, found, err := store.Get(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "https://example.com", state.URL)
	assert.False(t, state.HasBaseline())
}

func TestSQLiteStateStore_PutAndGet(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	original := models.URLState{
		URL:                 "https://example.com/page",
		LastFingerprint:     "abc123",
		NormalizedText:      "line one\nline two",
		ETag:                `"v1"`,
		LastModified:        "Mon, 02 Jan 2006 15:04:05 GMT",
		LastCheckedAt:       now,
		LastChangedAt:       now.Add(-time.Hour),
		LastNotifiedAt:      now.Add(-2 * time.Hour),
		ConsecutiveFailures: 2,
		LastError:           "timeout talking to origin",
	}

	require.NoError(t, store.Put(context.Background(), original))

	loaded, found, err := store.Get(context.Background(), original.URL)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, original.URL, loaded.URL)
	assert.Equal(t, original.LastFingerprint, loaded.LastFingerprint)
	assert.Equal(t, original.NormalizedText, loaded.NormalizedText)
	assert.Equal(t, original.ETag, loaded.ETag)
	assert.Equal(t, original.LastModified, loaded.LastModified)
	assert.Equal(t, original.ConsecutiveFailures, loaded.ConsecutiveFailures)
	assert.Equal(t, original.LastError, loaded.LastError)
	assert.WithinDuration(t, original.LastCheckedAt, loaded.LastCheckedAt, time.Second)
	assert.WithinDuration(t, original.LastChangedAt, loaded.LastChangedAt, time.Second)
	assert.WithinDuration(t, original.LastNotifiedAt, loaded.LastNotifiedAt, time.Second)
}

func TestSQLiteStateStore_Put_UpsertsExistingRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := models.URLState{URL: "https://example.com", LastFingerprint: "v1", ConsecutiveFailures: 3}
	require.NoError(t, store.Put(ctx, first))

	second := first
	second.LastFingerprint = "v2"
	second.ConsecutiveFailures = 0
	require.NoError(t, store.Put(ctx, second))

	loaded, found, err := store.Get(ctx, first.URL)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v2", loaded.LastFingerprint)
	assert.Equal(t, 0, loaded.ConsecutiveFailures)
}

func TestSQLiteStateStore_ZeroTimesRoundTripAsAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := models.URLState{URL: "https://example.com", LastFingerprint: "v1"}
	require.NoError(t, store.Put(ctx, state))

	loaded, found, err := store.Get(ctx, state.URL)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, loaded.LastCheckedAt.IsZero())
	assert.True(t, loaded.LastChangedAt.IsZero())
	assert.True(t, loaded.LastNotifiedAt.IsZero())
}

func TestSQLiteStateStore_KeepsRecordsPerURL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, models.URLState{URL: "https://a.example.com", LastFingerprint: "a"}))
	require.NoError(t, store.Put(ctx, models.URLState{URL: "https://b.example.com", LastFingerprint: "b"}))

	a, found, err := store.Get(ctx, "https://a.example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "a", a.LastFingerprint)

	b, found, err := store.Get(ctx, "https://b.example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "b", b.LastFingerprint)
}

func TestNewSQLiteStateStore_CreatesParentDirectories(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dirs", "state.db")

	store, err := NewSQLiteStateStore(config.StorageConfig{SQLiteDBPath: dbPath}, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(context.Background(), models.URLState{URL: "https://example.com"}))
	assert.FileExists(t, dbPath)
}
