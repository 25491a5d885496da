package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// inputHeight is the number of rows taken by the bordered message input.
const inputHeight = 3

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	// sessionID is the session this app drives.
	sessionID string

	// request is submitted on Init when set.
	request *domain.CustomerRequest

	transcript viewport.Model
	input      *input.ChatInput
	plans      *list.PlanList
	status     *status.Bar

	focus    messages.Focus
	snapshot *domain.SessionSnapshot

	// pending is the message awaiting a reply.
	pending string
	busy    bool

	showHelp bool
	err      error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat app bound to an existing session. When req is not
// nil it is submitted as soon as the program starts.
func NewApp(ports *Ports, sessionID string, req *domain.CustomerRequest) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if sessionID == "" {
		return nil, fmt.Errorf("creating app: %w", ErrMissingSession)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		sessionID:  sessionID,
		request:    req,
		transcript: viewport.New(80, 10),
		input:      input.NewChatInput(s),
		plans:      list.NewPlanList(s),
		status:     status.NewBar(s, km),
		focus:      messages.FocusInput,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("houseplan"),
		a.input.Init(),
	}
	if a.request != nil {
		a.busy = true
		a.status.SetState(status.StateDrafting)
		cmds = append(cmds, a.submitCmd(*a.request))
	} else {
		cmds = append(cmds, a.loadCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ProposalReady:
		a.busy = false
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.err = nil
		a.status.SetState(status.StateReady)
		a.apply(msg.Snapshot)
		return a, nil

	case messages.ReplyReceived:
		a.busy = false
		a.pending = ""
		if msg.Err != nil {
			a.fail(msg.Err)
		} else {
			a.err = nil
			a.status.SetState(a.idleState())
		}
		// A failed reply is recorded in the transcript too.
		return a, a.loadCmd()

	case messages.SessionLoaded:
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.apply(msg.Snapshot)
		return a, nil

	case messages.PlanOpened:
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.plans.SetOpen(msg.Key)
		a.status.SetMessage(fmt.Sprintf("Opened %s: %s", msg.Key, msg.URL))
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keymap.Help):
		a.showHelp = !a.showHelp
		return a, nil

	case key.Matches(msg, a.keymap.SwitchFocus):
		return a, a.toggleFocus()

	case key.Matches(msg, a.keymap.ScrollUp), key.Matches(msg, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd
	}

	if a.focus == messages.FocusPlans {
		if key.Matches(msg, a.keymap.Send) {
			plan := a.plans.SelectedPlan()
			if plan == nil {
				return a, nil
			}
			return a, a.openCmd(plan.Key())
		}
		var cmd tea.Cmd
		a.plans, cmd = a.plans.Update(msg)
		return a, cmd
	}

	if key.Matches(msg, a.keymap.Send) {
		return a, a.send()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// send submits the input as a follow-up message.
func (a *App) send() tea.Cmd {
	text := strings.TrimSpace(a.input.Value())
	if text == "" || a.busy {
		return nil
	}
	if a.snapshot == nil || a.snapshot.State == domain.SessionEmpty {
		a.fail(domain.ErrNoProposal)
		return nil
	}

	a.input.Reset()
	a.pending = text
	a.busy = true
	a.status.SetState(status.StateReplying)
	a.refresh()
	return a.sendCmd(text)
}

func (a *App) toggleFocus() tea.Cmd {
	if a.focus == messages.FocusInput {
		a.focus = messages.FocusPlans
		a.input.Blur()
		if !a.busy {
			a.status.SetState(status.StatePlans)
		}
		return nil
	}
	a.focus = messages.FocusInput
	if !a.busy {
		a.status.SetState(status.StateReady)
	}
	return a.input.Focus()
}

func (a *App) idleState() status.State {
	if a.focus == messages.FocusPlans {
		return status.StatePlans
	}
	return status.StateReady
}

func (a *App) fail(err error) {
	a.err = err
	a.status.SetState(status.StateError)
	switch {
	case errors.Is(err, domain.ErrNoProposal):
		a.status.SetMessage("submit a request before chatting")
	default:
		a.status.SetMessage(err.Error())
	}
}

// apply replaces the displayed session state.
func (a *App) apply(snap *domain.SessionSnapshot) {
	if snap == nil {
		return
	}
	a.snapshot = snap
	a.plans.SetPlans(snap.Plans)
	a.plans.SetOpen(snap.OpenPlanKey)
	a.status.SetSession(snap.State)
	a.layout()
	a.refresh()
}

// refresh re-renders the transcript and scrolls to the latest turn.
func (a *App) refresh() {
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
}

func (a *App) renderTranscript() string {
	width := max(a.transcript.Width-2, 20)
	var b strings.Builder

	if a.snapshot == nil || a.snapshot.State == domain.SessionEmpty {
		b.WriteString(a.styles.Muted.Render("No proposal yet."))
		b.WriteString("\n")
	} else {
		b.WriteString(a.styles.Title.Render("Proposal"))
		b.WriteString("\n")
		b.WriteString(a.styles.Proposal.Width(width).Render(a.snapshot.Proposal))
		b.WriteString("\n")

		for _, turn := range a.snapshot.Transcript {
			b.WriteString("\n")
			b.WriteString(a.renderTurn(turn, width))
		}
	}

	if a.pending != "" {
		b.WriteString("\n")
		b.WriteString(a.renderTurn(domain.ConversationTurn{Role: domain.RoleUser, Content: a.pending}, width))
	}
	return b.String()
}

func (a *App) renderTurn(turn domain.ConversationTurn, width int) string {
	label := a.styles.AssistantTurn.Render("Assistant:")
	body := a.styles.Normal
	if turn.Role == domain.RoleUser {
		label = a.styles.UserTurn.Render("You:")
	}
	if turn.Failed {
		body = a.styles.FailedTurn
	}
	return label + "\n" + body.Width(width).Render(turn.Content) + "\n"
}

// layout sizes the transcript to whatever the other components leave.
func (a *App) layout() {
	a.input.SetWidth(a.width)
	a.plans.SetWidth(a.width)
	a.status.SetWidth(a.width)
	a.transcript.Width = max(a.width, 20)
	a.transcript.Height = max(a.height-a.plans.Height()-inputHeight-1, 3)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.showHelp {
		return a.viewHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.transcript.View(),
		a.plans.View(a.focus == messages.FocusPlans),
		a.input.View(),
		a.status.View(),
	)
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[f1] back"))
	return b.String()
}

func (a *App) submitCmd(req domain.CustomerRequest) tea.Cmd {
	return func() tea.Msg {
		snap, err := a.ports.Session.SubmitRequest(a.ctx, a.sessionID, req)
		return messages.ProposalReady{Snapshot: snap, Err: err}
	}
}

func (a *App) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := a.ports.Session.Chat(a.ctx, a.sessionID, text)
		return messages.ReplyReceived{Reply: reply, Err: err}
	}
}

func (a *App) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.ports.Session.Snapshot(a.sessionID)
		return messages.SessionLoaded{Snapshot: snap, Err: err}
	}
}

func (a *App) openCmd(key string) tea.Cmd {
	return func() tea.Msg {
		url, err := a.ports.Session.OpenPlan(a.ctx, a.sessionID, key)
		return messages.PlanOpened{Key: key, URL: url, Err: err}
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Focus returns the component receiving key input.
func (a *App) Focus() messages.Focus {
	return a.focus
}

// Snapshot returns the session state last shown.
func (a *App) Snapshot() *domain.SessionSnapshot {
	return a.snapshot
}

// Transcript returns the rendered transcript content.
func (a *App) Transcript() string {
	return a.renderTranscript()
}

// Busy reports whether a request or reply is in flight.
func (a *App) Busy() bool {
	return a.busy
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.layout()
	a.refresh()
}
