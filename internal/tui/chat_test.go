package tui

import (
	"context"
	"errors"
	"testing"

	"agent-chat/internal/app"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestChatModel(t *testing.T) (chatModel, *app.MemoryKVStore) {
	t.Helper()
	kv := app.NewMemoryKVStore()
	ctrl := app.NewController(
		app.NewSessionStore(kv, nil),
		app.NewHistoryStore(kv, nil),
		app.NewAgentStore(kv, nil),
		app.NewMockChatClient(),
		&app.MockUploader{},
		nil,
	)
	if err := ctrl.Open(context.Background(), app.Agent{Name: "Chat"}, ""); err != nil {
		t.Fatalf("open: %v", err)
	}
	return newChatModel(ctrl), kv
}

func TestDraftPersistFailureSetsNotice(t *testing.T) {
	m, kv := newTestChatModel(t)

	kv.FailNext = errors.New("disk full")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})

	if m.notice == "" {
		t.Fatalf("expected a notice after a failed draft persist")
	}
}

func TestDraftEditPersistsThroughController(t *testing.T) {
	m, _ := newTestChatModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	if m.notice != "" {
		t.Fatalf("unexpected notice: %q", m.notice)
	}
	if got := m.ctrl.Session().DraftInput; got != "h" {
		t.Fatalf("draft not persisted on edit: %q", got)
	}
}
