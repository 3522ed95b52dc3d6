package tui

import "github.com/charmbracelet/lipgloss"

// Colors - shared palette for both screens
const (
	colorBg        = "#0F172A" // Slate 900
	colorBgCard    = "#1E293B" // Slate 800
	colorFg        = "#F8FAFC" // Slate 50
	colorFgMuted   = "#94A3B8" // Slate 400
	colorPrimary   = "#3B82F6" // Blue 500
	colorSuccess   = "#10B981" // Emerald 500
	colorWarning   = "#F59E0B" // Amber 500
	colorError     = "#EF4444" // Red 500
	colorBorder    = "#334155" // Slate 700
	colorUserMsg   = "#3B82F6" // Blue 500
	colorAgentMsg  = "#10B981" // Emerald 500
	colorAttachTag = "#06B6D4" // Cyan 500
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorFg)).
			Background(lipgloss.Color(colorBgCard)).
			Padding(0, 2).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(colorBorder))

	userMessageStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorUserMsg))

	agentMessageStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorAgentMsg))

	messageContentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorFg)).
				PaddingLeft(2).
				MarginBottom(1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorPrimary)).
			PaddingLeft(2)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarning)).
			PaddingLeft(2)

	attachmentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAttachTag)).
			PaddingLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFgMuted)).
			PaddingLeft(2)
)
