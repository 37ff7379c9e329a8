// Package history keeps the client-side log of saved receipts.
//
// The log is a denormalized, most-recent-first list of models.HistoryEntry.
// It is never reconciled with the authoritative store: the first save of a
// receipt is mirrored and later saves leave the entry untouched.
package history

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/roomsplit/internal/models"
)

// LocalStore persists the whole history list on the client device.
type LocalStore interface {
	// Load returns the stored list. A missing or unreadable list is empty.
	Load() []models.HistoryEntry

	// Save replaces the stored list.
	Save(entries []models.HistoryEntry) error
}

// Mirror appends summaries of saved receipts to a LocalStore.
type Mirror struct {
	mu    sync.Mutex
	store LocalStore
}

// NewMirror creates a Mirror over the given local store.
func NewMirror(store LocalStore) *Mirror {
	return &Mirror{store: store}
}

// Append prepends entry unless an entry with the same receipt ID exists.
// It reports whether the list changed.
func (m *Mirror) Append(entry models.HistoryEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.store.Load()
	for _, existing := range entries {
		if existing.ID == entry.ID {
			slog.Debug("History entry already mirrored", "receipt_id", entry.ID)
			return false, nil
		}
	}

	updated := make([]models.HistoryEntry, 0, len(entries)+1)
	updated = append(updated, entry)
	updated = append(updated, entries...)
	if err := m.store.Save(updated); err != nil {
		return false, fmt.Errorf("failed to save history: %w", err)
	}

	slog.Debug("History entry mirrored", "receipt_id", entry.ID, "entries", len(updated))
	return true, nil
}

// ClearAll removes every entry.
func (m *Mirror) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save([]models.HistoryEntry{}); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// List returns the mirrored entries, most recent first.
func (m *Mirror) List() []models.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.Load()
}
