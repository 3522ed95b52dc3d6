package tui

import (
	"context"
	"fmt"
	"time"

	"agent-chat/internal/app"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// historyItem adapts a HistoryEntry to the bubbles list.
type historyItem struct {
	entry app.HistoryEntry
}

func (i historyItem) Title() string {
	name := i.entry.AgentName
	if name == "" {
		name = string(app.DefaultAgentIdentity)
	}
	return fmt.Sprintf("%s • %s", name, i.entry.CreatedAt.Local().Format("Jan 2 15:04"))
}

func (i historyItem) Description() string { return i.entry.Preview() }
func (i historyItem) FilterValue() string { return i.entry.AgentName + " " + i.entry.Preview() }

// historyLoadedMsg delivers the (re)loaded history list.
type historyLoadedMsg struct {
	entries []app.HistoryEntry
	err     error
}

// resumeChatMsg asks the root model to reopen a saved conversation.
type resumeChatMsg struct{ entry app.HistoryEntry }

type historyModel struct {
	history *app.HistoryStore
	list    list.Model
	notice  string
	width   int
	height  int
}

func newHistoryModel(history *app.HistoryStore) historyModel {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Saved chats"
	l.SetShowStatusBar(false)
	return historyModel{history: history, list: l, width: 80, height: 24}
}

func (m historyModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		entries, err := m.history.List(ctx)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (m historyModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.history.DeleteOne(ctx, id); err != nil {
			return historyLoadedMsg{err: err}
		}
		entries, err := m.history.List(ctx)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (m historyModel) clearCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.history.DeleteAll(ctx); err != nil {
			return historyLoadedMsg{err: err}
		}
		return historyLoadedMsg{entries: []app.HistoryEntry{}}
	}
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.entries))
		for _, e := range msg.entries {
			items = append(items, historyItem{entry: e})
		}
		m.notice = ""
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		// Don't swallow keys while the user is filtering.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(historyItem); ok {
				return m, func() tea.Msg { return resumeChatMsg{entry: item.entry} }
			}
			return m, nil
		case "x", "delete":
			if item, ok := m.list.SelectedItem().(historyItem); ok {
				return m, m.deleteCmd(item.entry.ID)
			}
			return m, nil
		case "C":
			return m, m.clearCmd()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m historyModel) View() string {
	out := m.list.View() + "\n"
	if m.notice != "" {
		out += noticeStyle.Render(m.notice) + "\n"
	}
	out += helpStyle.Render("enter open • x delete • C clear all • esc back • ctrl+c quit")
	return out
}
