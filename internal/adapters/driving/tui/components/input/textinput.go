// Package input is the single-line message box of the chat screen.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/styles"
)

const (
	maxMessageChars = 2000
	defaultWidth    = 50
	minFieldWidth   = 20

	// labelAndBorder is the room taken by the "You: " label and the
	// field's border and padding.
	labelAndBorder = 12
)

// ChatInput is a focused text field prefixed with a "You:" label.
type ChatInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int
}

func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "Ask for changes to the proposal..."
	field.CharLimit = maxMessageChars
	field.Width = defaultWidth
	field.Focus()

	return &ChatInput{field: field, styles: s, width: defaultWidth}
}

func (c *ChatInput) Init() tea.Cmd { return textinput.Blink }

func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.field, cmd = c.field.Update(msg)
	return c, cmd
}

func (c *ChatInput) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Center, //nolint:misspell // lipgloss identifier
		c.styles.Title.Render("You: "),
		c.styles.InputField.Render(c.field.View()),
	)
}

func (c *ChatInput) Value() string     { return c.field.Value() }
func (c *ChatInput) SetValue(v string) { c.field.SetValue(v) }
func (c *ChatInput) Focus() tea.Cmd    { return c.field.Focus() }
func (c *ChatInput) Blur()             { c.field.Blur() }
func (c *ChatInput) Focused() bool     { return c.field.Focused() }
func (c *ChatInput) Reset()            { c.field.Reset() }
func (c *ChatInput) Width() int        { return c.width }

// SetWidth sizes the whole component. The text field gets what is left
// after the label, and never less than minFieldWidth.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	c.field.Width = max(width-labelAndBorder, minFieldWidth)
}
