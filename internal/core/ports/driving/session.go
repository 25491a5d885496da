package driving

import (
	"context"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// SessionService runs the request, proposal and chat workflow for
// independent sessions.
type SessionService interface {
	// NewSession creates an empty session and returns its ID.
	NewSession() string

	// SubmitRequest drafts a proposal for req, replacing any previous
	// proposal and clearing the transcript.
	SubmitRequest(ctx context.Context, sessionID string, req domain.CustomerRequest) (*domain.SessionSnapshot, error)

	// Chat sends a follow-up message and returns the assistant reply.
	// Returns domain.ErrNoProposal if no proposal exists yet.
	Chat(ctx context.Context, sessionID, message string) (string, error)

	// OpenPlan issues a signed URL for a retrieved plan and records it as
	// the session's open document.
	OpenPlan(ctx context.Context, sessionID, key string) (string, error)

	// ReadPlan returns the original document of a retrieved plan.
	ReadPlan(ctx context.Context, sessionID, key string) (*domain.PlanDocument, error)

	// Snapshot returns a copy of the session state.
	Snapshot(sessionID string) (*domain.SessionSnapshot, error)

	// CloseSession discards a session.
	CloseSession(sessionID string) error

	// Sessions returns the IDs of all open sessions.
	Sessions() []string
}
