package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// HistoryStore owns the durable list of conversations under the single
// CHAT_HISTORY_V1 key. Read-modify-write here is not atomic; the store
// is only ever mutated by the single active screen for a conversation,
// so no locking is layered on top.
type HistoryStore struct {
	kv     KeyValueStore
	logger *Logger
}

func NewHistoryStore(kv KeyValueStore, logger *Logger) *HistoryStore {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &HistoryStore{kv: kv, logger: logger}
}

// load returns the stored list in insertion order. Absent or malformed
// data yields an empty list.
func (s *HistoryStore) load(ctx context.Context) ([]HistoryEntry, error) {
	raw, ok, err := s.kv.Get(ctx, historyKey)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if !ok {
		return []HistoryEntry{}, nil
	}
	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("discarding malformed stored history", map[string]interface{}{
			"error": err.Error(),
		})
		return []HistoryEntry{}, nil
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return entries, nil
}

func (s *HistoryStore) save(ctx context.Context, entries []HistoryEntry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, historyKey, string(b)); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// List returns all entries sorted by CreatedAt descending. Storage
// order (insertion order) is left untouched.
func (s *HistoryStore) List(ctx context.Context) ([]HistoryEntry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Get returns the entry with the given id, or ok == false.
func (s *HistoryStore) Get(ctx context.Context, id string) (HistoryEntry, bool, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return HistoryEntry{}, false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return HistoryEntry{}, false, nil
}

// Upsert replaces the entry with entry.ID wholesale, or prepends it to
// the stored list when no entry with that id exists.
func (s *HistoryStore) Upsert(ctx context.Context, entry HistoryEntry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("history entry without id")
	}
	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append([]HistoryEntry{entry}, entries...)
	}
	return s.save(ctx, entries)
}

// DeleteOne removes the entry with the given id; a missing id is a no-op.
func (s *HistoryStore) DeleteOne(ctx context.Context, id string) error {
	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	next := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			next = append(next, e)
		}
	}
	return s.save(ctx, next)
}

// DeleteAll clears the stored list entirely.
func (s *HistoryStore) DeleteAll(ctx context.Context) error {
	if err := s.kv.Delete(ctx, historyKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Preview derives the one-line summary shown in history listings: the
// text of the last non-system message, or "[Image attached]" when that
// turn carried only an image.
func (e HistoryEntry) Preview() string {
	for i := len(e.Messages) - 1; i >= 0; i-- {
		m := e.Messages[i]
		if m.Role == RoleSystem {
			continue
		}
		text, imageURL := DecodeContent(m.Content)
		if text != "" {
			return text
		}
		if imageURL != "" {
			return "[Image attached]"
		}
		return ""
	}
	return ""
}
