package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

func proposedSnapshot() *domain.SessionSnapshot {
	return &domain.SessionSnapshot{
		ID:       "s-1",
		State:    domain.SessionProposed,
		Proposal: "Three bedrooms around a south-facing living room.",
		Plans: []domain.RetrievedPlan{
			{StoragePath: "a/x.pdf?tok=2", Filename: "x.pdf", Score: 0.9},
			{StoragePath: "b/y.pdf", Filename: "y.pdf", Score: 0.7},
		},
		Transcript: []domain.ConversationTurn{},
	}
}

func newTestApp(t *testing.T, svc *mockSessionService) *App {
	t.Helper()
	app, err := NewApp(&Ports{Session: svc}, "s-1", nil)
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app
}

// run executes cmd and feeds the resulting message back into the app.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp(t *testing.T) {
	_, err := NewApp(&Ports{}, "s-1", nil)
	assert.ErrorIs(t, err, ErrMissingSessionService)

	_, err = NewApp(&Ports{Session: &mockSessionService{}}, "", nil)
	assert.ErrorIs(t, err, ErrMissingSession)

	app, err := NewApp(&Ports{Session: &mockSessionService{}}, "s-1", nil)
	require.NoError(t, err)
	assert.Equal(t, messages.FocusInput, app.Focus())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t, &mockSessionService{})
	assert.Same(t, app, app.WithContext(context.TODO()))
}

func TestApp_Init_SubmitsRequest(t *testing.T) {
	svc := &mockSessionService{snapshot: proposedSnapshot()}
	req := &domain.CustomerRequest{FamilySize: 4, RoomCount: 3, FloorAreaSqm: 120, Budget: 4500}
	app, err := NewApp(&Ports{Session: svc}, "s-1", req)
	require.NoError(t, err)
	app.SetDimensions(120, 40)

	cmd := app.Init()
	assert.NotNil(t, cmd)
	assert.True(t, app.Busy())

	run(t, app, app.submitCmd(*req))

	require.Len(t, svc.submitted, 1)
	assert.Equal(t, 4, svc.submitted[0].FamilySize)
	assert.False(t, app.Busy())
	require.NotNil(t, app.Snapshot())
	assert.Equal(t, domain.SessionProposed, app.Snapshot().State)
	assert.Len(t, app.plans.Plans(), 2)
	assert.Contains(t, app.Transcript(), "south-facing living room")
}

func TestApp_ProposalFailure(t *testing.T) {
	app := newTestApp(t, &mockSessionService{})

	app.Update(messages.ProposalReady{Err: domain.ErrGeneration})

	assert.ErrorIs(t, app.Err(), domain.ErrGeneration)
	assert.Nil(t, app.Snapshot())
	assert.Contains(t, app.Transcript(), "No proposal yet.")
}

func TestApp_ChatWithoutProposal(t *testing.T) {
	svc := &mockSessionService{}
	app := newTestApp(t, svc)
	run(t, app, app.loadCmd())

	typeText(app, "bigger kitchen")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, app.Err(), domain.ErrNoProposal)
	assert.Empty(t, svc.sent)
}

func TestApp_SendMessage(t *testing.T) {
	svc := &mockSessionService{snapshot: proposedSnapshot(), reply: "Sure, widened the kitchen."}
	app := newTestApp(t, svc)
	app.Update(messages.ProposalReady{Snapshot: proposedSnapshot()})

	typeText(app, "bigger kitchen")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.True(t, app.Busy())
	assert.Empty(t, app.input.Value())
	assert.Contains(t, app.Transcript(), "bigger kitchen")

	// A second enter while waiting is ignored.
	typeText(app, "again")
	_, second := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)

	reply := cmd()
	assert.Equal(t, messages.ReplyReceived{Reply: "Sure, widened the kitchen."}, reply)
	assert.Equal(t, []string{"bigger kitchen"}, svc.sent)

	svc.snapshot.State = domain.SessionChatting
	svc.snapshot.Transcript = []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "bigger kitchen"},
		{Role: domain.RoleAssistant, Content: "Sure, widened the kitchen."},
	}
	_, load := app.Update(reply)
	run(t, app, load)

	assert.False(t, app.Busy())
	assert.NoError(t, app.Err())
	assert.Equal(t, domain.SessionChatting, app.Snapshot().State)
	assert.Contains(t, app.Transcript(), "widened the kitchen")
}

func TestApp_FailedReplyReloadsTranscript(t *testing.T) {
	svc := &mockSessionService{snapshot: proposedSnapshot()}
	app := newTestApp(t, svc)
	app.Update(messages.ProposalReady{Snapshot: proposedSnapshot()})

	svc.snapshot.Transcript = []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "bigger kitchen"},
		{Role: domain.RoleAssistant, Content: "[error] generation failed", Failed: true},
	}
	_, load := app.Update(messages.ReplyReceived{Err: domain.ErrGeneration})
	assert.ErrorIs(t, app.Err(), domain.ErrGeneration)

	run(t, app, load)
	assert.Contains(t, app.Transcript(), "[error] generation failed")
}

func TestApp_SwitchFocusAndOpenPlan(t *testing.T) {
	svc := &mockSessionService{snapshot: proposedSnapshot(), url: "file:///plans/b/y.pdf?expires=1"}
	app := newTestApp(t, svc)
	app.Update(messages.ProposalReady{Snapshot: proposedSnapshot()})

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.FocusPlans, app.Focus())
	assert.False(t, app.input.Focused())

	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, app.plans.Selected())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)

	assert.Equal(t, "b/y.pdf", svc.openedKey)
	assert.Contains(t, app.status.Message(), "file:///plans/b/y.pdf")
	assert.Contains(t, app.View(), "*")

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.FocusInput, app.Focus())
}

func TestApp_OpenPlanFailure(t *testing.T) {
	app := newTestApp(t, &mockSessionService{})

	app.Update(messages.PlanOpened{Key: "a/x.pdf", Err: errors.New("no such object")})

	assert.EqualError(t, app.Err(), "no such object")
}

func TestApp_HelpToggle(t *testing.T) {
	app := newTestApp(t, &mockSessionService{})

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Contains(t, app.View(), "Help")
	assert.Contains(t, app.View(), "send")

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.NotContains(t, app.View(), "[f1] back")
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, &mockSessionService{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Session: &mockSessionService{}}, "s-1", nil)
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.transcript.Width)
	assert.Less(t, app.transcript.Height, 30)
}
