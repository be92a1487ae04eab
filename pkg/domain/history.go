package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// HistoryFilename returns the download name of a history export created at t.
func HistoryFilename(t time.Time) string {
	return "detection-history-" + t.Format(time.DateOnly) + ".json"
}

// MarshalHistory serializes items, including their results, as an indented
// JSON array. The document has no version field.
func MarshalHistory(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}

	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not marshal history: %w", err)
	}

	return b, nil
}

// UnmarshalHistory parses a document produced by MarshalHistory.
func UnmarshalHistory(b []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("could not unmarshal history: %w", err)
	}

	return items, nil
}
