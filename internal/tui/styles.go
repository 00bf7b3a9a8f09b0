package tui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Primary = lipgloss.Color("#7C3AED")
	Accent  = lipgloss.Color("#06B6D4")
	Success = lipgloss.Color("#22C55E")
	Danger  = lipgloss.Color("#EF4444")
	Muted   = lipgloss.Color("#6B7280")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(Accent)

	mainStyle = lipgloss.NewStyle().
			Bold(true)

	smallStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Every row carries a left border so selection never changes widths.
	rowStyle = lipgloss.NewStyle().
			Border(lipgloss.HiddenBorder(), false, false, false, true).
			PaddingLeft(1)

	selectedRowStyle = rowStyle.
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(Primary)

	changedRowStyle = rowStyle.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(Success)

	statusStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true).
			Padding(0, 1)
)

// rowFrameWidth is the horizontal space taken by rowStyle.
func rowFrameWidth() int {
	return rowStyle.GetHorizontalFrameSize()
}
