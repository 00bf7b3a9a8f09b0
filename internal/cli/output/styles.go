package output

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

// Styles holds the text styles of a Renderer.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style

	// Edit kinds
	Delete lipgloss.Style
	Insert lipgloss.Style
	Update lipgloss.Style
	Move   lipgloss.Style
}

// NewStyles creates the styles for lr.
func NewStyles(lr *lipgloss.Renderer) Styles {
	return Styles{
		Title:    lr.NewStyle().Bold(true).Foreground(colorPrimary),
		Subtitle: lr.NewStyle().Bold(true),
		Label:    lr.NewStyle().Foreground(colorMuted),
		Success:  lr.NewStyle().Foreground(colorSuccess),
		Warning:  lr.NewStyle().Foreground(colorWarning),
		Error:    lr.NewStyle().Foreground(colorError),
		Muted:    lr.NewStyle().Foreground(colorMuted),
		Delete:   lr.NewStyle().Foreground(colorError),
		Insert:   lr.NewStyle().Foreground(colorSuccess),
		Update:   lr.NewStyle().Foreground(colorWarning),
		Move:     lr.NewStyle().Foreground(colorPrimary),
	}
}
