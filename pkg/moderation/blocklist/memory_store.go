package blocklist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// MemoryStore serves a fixed entry set, used for deployments without a
// managed blocklist store.
type MemoryStore struct {
	entries []Entry
}

func NewMemoryStore(entries []Entry) *MemoryStore {
	return &MemoryStore{entries: entries}
}

// NewMemoryStoreFromJSON builds a store from the fallback JSON-encoded
// blocklist configuration value.
func NewMemoryStoreFromJSON(raw string) (*MemoryStore, error) {
	if raw == "" {
		return &MemoryStore{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("invalid fallback blocklist: %w", err)
	}
	return &MemoryStore{entries: entries}, nil
}

// EntriesFromSettings decodes entries given as loosely-typed config maps.
func EntriesFromSettings(settings []map[string]interface{}) ([]Entry, error) {
	entries := make([]Entry, 0, len(settings))
	for _, setting := range settings {
		var entry Entry
		if err := mapstructure.Decode(setting, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode blocklist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *MemoryStore) Load(_ context.Context) ([]Entry, error) {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
