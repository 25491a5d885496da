// Package styles provides the colour theme and styling for the chat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the chat palette. The accent marks the assistant and the
// proposal, the highlight marks the customer.
type Theme struct {
	Accent    lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color

	// StatusBackground fills the bottom status line.
	StatusBackground lipgloss.Color
}

// DefaultTheme returns the blueprint palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:           lipgloss.Color("#3B82F6"),
		Highlight:        lipgloss.Color("#F59E0B"),
		Text:             lipgloss.Color("#CDD6F4"),
		Muted:            lipgloss.Color("#6C7086"),
		Success:          lipgloss.Color("#A6E3A1"),
		Error:            lipgloss.Color("#F38BA8"),
		Border:           lipgloss.Color("#45475A"),
		StatusBackground: lipgloss.Color("#181825"),
	}
}

// Styles are the lipgloss styles the chat components render with.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style

	// Selected is the cursor row of the plan list.
	Selected lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Transcript.
	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style
	FailedTurn    lipgloss.Style
	Proposal      lipgloss.Style
}

// NewStyles derives the styles from theme. A nil theme selects DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	label := lipgloss.NewStyle().Bold(true)

	return &Styles{
		Title:    label.Foreground(theme.Accent),
		Subtitle: label.Foreground(theme.Highlight),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Help:     lipgloss.NewStyle().Foreground(theme.Muted),
		Error:    lipgloss.NewStyle().Foreground(theme.Error),
		Success:  lipgloss.NewStyle().Foreground(theme.Success),
		Selected: label.Foreground(theme.Text).Background(theme.Accent),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.StatusBackground).
			Padding(0, 1),

		UserTurn:      label.Foreground(theme.Highlight),
		AssistantTurn: label.Foreground(theme.Accent),
		FailedTurn:    lipgloss.NewStyle().Italic(true).Foreground(theme.Error),
		Proposal: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Accent).
			PaddingLeft(1),
	}
}

// DefaultStyles returns styles for DefaultTheme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}
