package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Hernesto-SRL/management-front/internal/notify"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	focusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	fieldErr      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	errorBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#FF6B6B")).Padding(0, 1)
)

var levelStyles = map[notify.Level]lipgloss.Style{
	notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
	notify.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
	notify.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true),
	notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
}

func levelStyle(level notify.Level) lipgloss.Style {
	if style, ok := levelStyles[level]; ok {
		return style
	}
	return labelStyle
}
