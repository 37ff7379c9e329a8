package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmynk/roomsplit/internal/models"
)

// Ensure FileStore implements LocalStore
var _ LocalStore = (*FileStore)(nil)

// FileStore keeps the history list as a JSON array in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns ~/.roomsplit/history.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".roomsplit", "history.json"), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the list. Missing or corrupt files load as an empty list.
func (s *FileStore) Load() []models.HistoryEntry {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []models.HistoryEntry{}
	}
	if err != nil {
		slog.Warn("Failed to read history file", "path", s.path, "error", err)
		return []models.HistoryEntry{}
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("Failed to parse history file", "path", s.path, "error", err)
		return []models.HistoryEntry{}
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries
}

// Save writes the list through a temp file and rename.
func (s *FileStore) Save(entries []models.HistoryEntry) error {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
