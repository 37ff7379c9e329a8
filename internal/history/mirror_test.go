package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/roomsplit/internal/models"
)

func entry(id string, category models.Category, total int64) models.HistoryEntry {
	return models.HistoryEntry{
		ID:       id,
		Category: category,
		Date:     "2024/05/01",
		Total:    decimal.NewFromInt(total),
	}
}

func newFileMirror(t *testing.T) (*Mirror, *FileStore) {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "history.json"))
	return NewMirror(store), store
}

func TestMirrorAppendPrepends(t *testing.T) {
	mirror, _ := newFileMirror(t)

	added, err := mirror.Append(entry("r1", models.CategoryGrocery, 10))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = mirror.Append(entry("r2", models.CategoryTrip, 20))
	require.NoError(t, err)
	assert.True(t, added)

	list := mirror.List()
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.Equal(t, "r1", list[1].ID)
}

func TestMirrorAppendKeepsFirstSnapshot(t *testing.T) {
	mirror, _ := newFileMirror(t)

	_, err := mirror.Append(entry("r1", models.CategoryGrocery, 50))
	require.NoError(t, err)

	added, err := mirror.Append(entry("r1", models.CategoryGrocery, 80))
	require.NoError(t, err)
	assert.False(t, added)

	list := mirror.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].Total.Equal(decimal.NewFromInt(50)), "total = %s", list[0].Total)
}

func TestMirrorClearAll(t *testing.T) {
	mirror, store := newFileMirror(t)

	_, err := mirror.Append(entry("r1", models.CategoryGrocery, 10))
	require.NoError(t, err)
	_, err = mirror.Append(entry("r2", models.CategoryFurniture, 20))
	require.NoError(t, err)

	require.NoError(t, mirror.ClearAll())
	assert.Empty(t, mirror.List())
	assert.Empty(t, store.Load())

	// The list can be rebuilt after a clear.
	added, err := mirror.Append(entry("r1", models.CategoryGrocery, 99))
	require.NoError(t, err)
	assert.True(t, added)
}

func TestFileStoreSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	_, err := NewMirror(NewFileStore(path)).Append(entry("r1", models.CategoryTrip, 42))
	require.NoError(t, err)

	reloaded := NewFileStore(path).Load()
	require.Len(t, reloaded, 1)
	assert.Equal(t, "r1", reloaded[0].ID)
	assert.Equal(t, models.CategoryTrip, reloaded[0].Category)
	assert.True(t, reloaded[0].Total.Equal(decimal.NewFromInt(42)))
}

func TestFileStoreMissingOrCorruptLoadsEmpty(t *testing.T) {
	dir := t.TempDir()

	missing := NewFileStore(filepath.Join(dir, "none.json"))
	assert.Empty(t, missing.Load())

	corruptPath := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corruptPath, []byte("{not json"), 0644))
	assert.Empty(t, NewFileStore(corruptPath).Load())
}

type failingStore struct {
	entries []models.HistoryEntry
}

func (s *failingStore) Load() []models.HistoryEntry { return s.entries }

func (s *failingStore) Save([]models.HistoryEntry) error { return errors.New("disk full") }

func TestMirrorAppendReportsSaveFailure(t *testing.T) {
	mirror := NewMirror(&failingStore{})

	added, err := mirror.Append(entry("r1", models.CategoryGrocery, 10))
	assert.Error(t, err)
	assert.False(t, added)
}
