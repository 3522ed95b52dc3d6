package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func historyEntry(id string, createdAt time.Time, content string) HistoryEntry {
	return HistoryEntry{
		ID:        id,
		AgentName: "Tutor",
		CreatedAt: createdAt,
		Messages:  []Message{{Role: RoleUser, Content: content}},
	}
}

func TestHistoryListSortedByCreatedAtDescending(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(NewMemoryKVStore(), nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of chronological order on purpose.
	for _, e := range []HistoryEntry{
		historyEntry("b", base.Add(time.Hour), "second"),
		historyEntry("c", base.Add(2*time.Hour), "third"),
		historyEntry("a", base, "first"),
	} {
		if err := store.Upsert(ctx, e); err != nil {
			t.Fatalf("upsert %s: %v", e.ID, err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"c", "b", "a"} {
		if entries[i].ID != want {
			t.Fatalf("order mismatch at %d: got %s want %s", i, entries[i].ID, want)
		}
	}
}

func TestHistoryListDoesNotRewriteStorageOrder(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKVStore()
	store := NewHistoryStore(kv, nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, historyEntry("old", base, "x")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, historyEntry("new", base.Add(time.Hour), "y")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := store.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}

	raw, ok, err := kv.Get(ctx, "CHAT_HISTORY_V1")
	if err != nil || !ok {
		t.Fatalf("raw read: ok=%v err=%v", ok, err)
	}
	var stored []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("unmarshal stored: %v", err)
	}
	// Insertion order in storage: newest prepended, List must not have
	// rewritten it.
	if stored[0].ID != "new" || stored[1].ID != "old" {
		t.Fatalf("storage order rewritten: %s, %s", stored[0].ID, stored[1].ID)
	}
}

func TestHistoryUpsertReplacesById(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(NewMemoryKVStore(), nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, historyEntry("a", base, "v1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	replaced := historyEntry("a", base, "v1")
	replaced.Messages = append(replaced.Messages, Message{Role: RoleAssistant, Content: "reply"})
	if err := store.Upsert(ctx, replaced); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected full overwrite, got %d entries", len(entries))
	}
	if len(entries[0].Messages) != 2 {
		t.Fatalf("expected replaced messages, got %#v", entries[0].Messages)
	}
}

func TestHistoryDeleteOneLeavesOthersInOrder(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(NewMemoryKVStore(), nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := store.Upsert(ctx, historyEntry(id, base.Add(time.Duration(i)*time.Hour), id)); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	if err := store.DeleteOne(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "c" || entries[1].ID != "a" {
		t.Fatalf("unexpected entries after delete: %#v", entries)
	}

	// Missing id is a no-op.
	if err := store.DeleteOne(ctx, "nope"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestHistoryDeleteAllEmptiesList(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(NewMemoryKVStore(), nil)

	if err := store.Upsert(ctx, historyEntry("a", time.Now(), "x")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d", len(entries))
	}
}

func TestHistoryMalformedStorageYieldsEmptyList(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKVStore()
	if err := kv.Set(ctx, "CHAT_HISTORY_V1", `{"not":"a list"`); err != nil {
		t.Fatalf("seed kv: %v", err)
	}
	store := NewHistoryStore(kv, nil)

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list must not fail on malformed data: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %#v", entries)
	}
}

func TestHistoryEntryPreview(t *testing.T) {
	e := HistoryEntry{Messages: []Message{
		{Role: RoleSystem, Content: "prompt"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
	}}
	if got := e.Preview(); got != "hi there" {
		t.Fatalf("preview mismatch: %q", got)
	}

	img := HistoryEntry{Messages: []Message{
		{Role: RoleUser, Content: EncodeContent("", "https://img.example.com/x.png")},
	}}
	if got := img.Preview(); got != "[Image attached]" {
		t.Fatalf("image preview mismatch: %q", got)
	}

	withText := HistoryEntry{Messages: []Message{
		{Role: RoleUser, Content: EncodeContent("what is this", "https://img.example.com/x.png")},
	}}
	if got := withText.Preview(); got != "what is this" {
		t.Fatalf("text preview mismatch: %q", got)
	}

	if got := (HistoryEntry{}).Preview(); got != "" {
		t.Fatalf("empty entry preview must be empty, got %q", got)
	}
}
