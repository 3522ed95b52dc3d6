package tui

import (
	"context"
	"fmt"
	"time"

	"agent-chat/internal/app"

	tea "github.com/charmbracelet/bubbletea"
)

type screen int

const (
	screenChat screen = iota
	screenHistory
)

// Model is the root TUI: it owns the conversation controller and
// switches between the chat screen and the history screen.
type Model struct {
	app     *app.Application
	ctrl    *app.Controller
	screen  screen
	chat    chatModel
	history historyModel
	err     error
}

// New opens the live session for agent and builds the root model.
func New(application *app.Application, agent app.Agent) (*Model, error) {
	ctrl := application.NewChatController()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ctrl.Open(ctx, agent, ""); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &Model{
		app:     application,
		ctrl:    ctrl,
		screen:  screenChat,
		chat:    newChatModel(ctrl),
		history: newHistoryModel(application.History),
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return m.chat.Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlH:
			if m.screen == screenChat {
				m.screen = screenHistory
				return m, m.history.loadCmd()
			}
		case tea.KeyEsc:
			if m.screen == screenHistory {
				m.screen = screenChat
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		var chatCmd, histCmd tea.Cmd
		m.chat, chatCmd = m.chat.Update(msg)
		m.history, histCmd = m.history.Update(msg)
		return m, tea.Batch(chatCmd, histCmd)

	case resumeChatMsg:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.ctrl.Resume(ctx, msg.entry); err != nil {
			m.err = err
			return m, nil
		}
		m.chat = newChatModel(m.ctrl)
		m.screen = screenChat
		return m, m.chat.Init()
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenChat:
		m.chat, cmd = m.chat.Update(msg)
	case screenHistory:
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

func (m *Model) View() string {
	if m.err != nil {
		return noticeStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}
	switch m.screen {
	case screenHistory:
		return m.history.View()
	default:
		return m.chat.View()
	}
}
