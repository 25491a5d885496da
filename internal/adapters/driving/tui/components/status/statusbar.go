// Package status renders the one-line footer of the chat screen.
package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// State is what the screen is busy with.
type State string

const (
	StateReady    State = "ready"
	StateDrafting State = "drafting"
	StateReplying State = "replying"
	StateError    State = "error"

	// StatePlans is StateReady with focus on the plan list.
	StatePlans State = "plans"
)

var busyText = map[State]string{
	StateDrafting: "Drafting proposal...",
	StateReplying: "Waiting for reply...",
}

// Bar shows activity or the session state on the left and key hints on
// the right.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	width  int

	state   State
	session domain.SessionState
	message string
}

// NewBar accepts nil styles or keys and uses the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keys: km, width: 80, state: StateReady, session: domain.SessionEmpty}
}

func (b *Bar) View() string {
	left, right := b.status(), b.hints()
	// Width includes the bar's padding.
	inner := b.width - b.styles.StatusBar.GetHorizontalFrameSize()
	gap := max(1, inner-lipgloss.Width(left)-lipgloss.Width(right))
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) status() string {
	if text, busy := busyText[b.state]; busy {
		return b.styles.Muted.Render(text)
	}
	if b.state == StateError {
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	}
	if b.message != "" {
		return b.styles.Success.Render(b.message)
	}
	return b.styles.Normal.Render(b.session.Description())
}

func (b *Bar) hints() string {
	bindings := b.keys.ShortHelp()
	if b.state == StatePlans {
		bindings = b.keys.PlansHelp()
	}
	return b.styles.Muted.Render(joinHelp(bindings))
}

func joinHelp(bindings []key.Binding) string {
	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		h := kb.Help()
		parts[i] = h.Key + ": " + h.Desc
	}
	return strings.Join(parts, " | ")
}

// SetState clears the message, so set the message after the state.
func (b *Bar) SetState(state State) {
	b.state = state
	b.message = ""
}

func (b *Bar) State() State                         { return b.state }
func (b *Bar) SetSession(state domain.SessionState) { b.session = state }
func (b *Bar) SetMessage(message string)            { b.message = message }
func (b *Bar) Message() string                      { return b.message }
func (b *Bar) SetWidth(width int)                   { b.width = width }
