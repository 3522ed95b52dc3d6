package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agent-chat/internal/app"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chatModel is the conversation screen: transcript, draft input, spinner
// while a send is in flight, and a one-line notice for surfaced errors.
type chatModel struct {
	ctrl     *app.Controller
	markdown *MarkdownRenderer

	input        textarea.Model
	spin         spinner.Model
	notice       string
	pendingImage string
	width        int
	height       int
}

// sendDoneMsg reports the outcome of a SendMessage command.
type sendDoneMsg struct{ err error }

// archiveDoneMsg reports the outcome of an Archive command.
type archiveDoneMsg struct{ err error }

func newChatModel(ctrl *app.Controller) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type a message ... (/attach <path> to add an image, /new to archive)"
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.Prompt = "▍ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.SetValue(ctrl.Session().DraftInput)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	return chatModel{
		ctrl:     ctrl,
		markdown: NewMarkdownRenderer(),
		input:    ta,
		spin:     sp,
		width:    80,
		height:   24,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 6)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			return m.handleEnter()
		case tea.KeyCtrlN:
			if m.ctrl.Sending() {
				return m, nil
			}
			return m, m.archiveCmd()
		}

	case sendDoneMsg:
		m.notice = noticeForError(msg.err)
		if errors.Is(msg.err, app.ErrUploadFailed) {
			// Keep the typed text so the user can retry the upload.
			m.input.SetValue(m.ctrl.Session().DraftInput)
		} else {
			m.pendingImage = ""
		}
		return m, nil

	case archiveDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Could not archive: %v", msg.err)
		} else {
			m.notice = "Conversation saved to history."
			m.input.Reset()
			m.pendingImage = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Sending() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before && !m.ctrl.Sending() {
		// Drafts survive app restarts, so persist on every edit.
		if err := m.ctrl.SetDraft(context.Background(), m.input.Value()); err != nil {
			m.notice = fmt.Sprintf("Could not save draft: %v", err)
		}
	}
	return m, cmd
}

func (m chatModel) handleEnter() (chatModel, tea.Cmd) {
	if m.ctrl.Sending() {
		return m, nil
	}
	value := strings.TrimSpace(m.input.Value())

	if path, ok := strings.CutPrefix(value, "/attach "); ok {
		m.pendingImage = strings.TrimSpace(path)
		m.notice = ""
		m.input.Reset()
		if err := m.ctrl.SetDraft(context.Background(), ""); err != nil {
			m.notice = fmt.Sprintf("Could not save draft: %v", err)
		}
		return m, nil
	}
	if value == "/new" {
		m.input.Reset()
		return m, m.archiveCmd()
	}
	if value == "" {
		return m, nil
	}

	m.notice = ""
	m.input.Reset()
	return m, tea.Batch(m.sendCmd(value, m.pendingImage), m.spin.Tick)
}

func (m chatModel) sendCmd(text, imagePath string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return sendDoneMsg{err: m.ctrl.SendMessage(ctx, text, imagePath)}
	}
}

func (m chatModel) archiveCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := m.ctrl.Archive(ctx)
		return archiveDoneMsg{err: err}
	}
}

func noticeForError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, app.ErrUploadFailed):
		return "Image upload failed. Your message was not sent; try again."
	default:
		var infErr *app.InferenceError
		if errors.As(err, &infErr) {
			return "The assistant could not reply. Your message is saved; send another to retry."
		}
		return fmt.Sprintf("Error: %v", err)
	}
}

func (m chatModel) View() string {
	var b strings.Builder

	agent := m.ctrl.Agent()
	title := agent.Name
	if agent.Emoji != "" {
		title = agent.Emoji + " " + title
	}
	b.WriteString(headerStyle.Width(m.width - 4).Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.renderTranscript())

	if m.ctrl.Sending() {
		b.WriteString(loadingStyle.Render(m.spin.View() + agent.Name + " is thinking"))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if m.pendingImage != "" {
		b.WriteString(attachmentStyle.Render("📎 " + m.pendingImage))
		b.WriteString("\n")
	}

	b.WriteString(inputStyle.Width(m.width - 4).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • ctrl+n new chat • ctrl+h history • ctrl+c quit"))
	return b.String()
}

func (m chatModel) renderTranscript() string {
	var b strings.Builder
	for _, msg := range m.ctrl.Session().Messages {
		if msg.Role == app.RoleSystem {
			continue
		}
		text, imageURL := app.DecodeContent(msg.Content)

		switch msg.Role {
		case app.RoleUser:
			b.WriteString(userMessageStyle.Render("You"))
			b.WriteString("\n")
			content := text
			if imageURL != "" {
				content = strings.TrimSpace(content + "\n🖼  " + imageURL)
			}
			b.WriteString(messageContentStyle.Width(m.width - 4).Render(content))
		case app.RoleAssistant:
			b.WriteString(agentMessageStyle.Render(m.ctrl.Agent().Name))
			b.WriteString("\n")
			b.WriteString(messageContentStyle.Width(m.width - 4).Render(m.markdown.Render(text)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
