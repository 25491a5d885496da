// Package messages defines Bubbletea message types for the chat TUI.
// Messages carry results of session operations back into the Elm loop.
package messages

import (
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// ProposalReady carries the session after a request was submitted.
type ProposalReady struct {
	Snapshot *domain.SessionSnapshot
	Err      error
}

// ReplyReceived carries the assistant's answer to a follow-up message.
type ReplyReceived struct {
	Reply string
	Err   error
}

// SessionLoaded carries a fresh copy of the session state.
type SessionLoaded struct {
	Snapshot *domain.SessionSnapshot
	Err      error
}

// PlanOpened carries the signed URL of an opened plan.
type PlanOpened struct {
	Key string
	URL string
	Err error
}

// Focus identifies which component receives key input.
type Focus int

const (
	// FocusInput sends keys to the message input.
	FocusInput Focus = iota
	// FocusPlans sends keys to the plan list.
	FocusPlans
)

// String returns the string representation of the focus target.
func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusPlans:
		return "plans"
	default:
		return "unknown"
	}
}
