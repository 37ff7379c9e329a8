package history

import (
	"strings"

	"github.com/mmynk/roomsplit/internal/models"
)

// FilterAll matches every category.
const FilterAll = "ALL"

// ParseFilter validates a category filter; empty input means FilterAll.
func ParseFilter(raw string) (string, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" || raw == FilterAll {
		return FilterAll, nil
	}
	c, err := models.ParseCategory(raw)
	if err != nil {
		return "", err
	}
	return string(c), nil
}

// Filter returns the entries matching filter, preserving order.
// FilterAll returns entries unchanged.
func Filter(entries []models.HistoryEntry, filter string) []models.HistoryEntry {
	if filter == FilterAll {
		return entries
	}
	matched := make([]models.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if string(e.Category) == filter {
			matched = append(matched, e)
		}
	}
	return matched
}
