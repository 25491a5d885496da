package domain

import "time"

// Role identifies who authored a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// ConversationTurn is one entry in a session transcript.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Failed marks an assistant turn recorded in place of a reply that
	// could not be generated. Failed turns are shown to the user but never
	// sent back to the generator.
	Failed bool `json:"failed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SessionState is the position of a session in the proposal workflow.
type SessionState string

// Session states. A session starts EMPTY, moves to PROPOSED when a request
// yields a proposal and to CHATTING on the first follow-up. A new request
// from any state returns it to PROPOSED.
const (
	SessionEmpty    SessionState = "EMPTY"
	SessionProposed SessionState = "PROPOSED"
	SessionChatting SessionState = "CHATTING"
)

// String returns the string representation.
func (s SessionState) String() string {
	return string(s)
}

// Description returns a human-readable description of the state.
func (s SessionState) Description() string {
	switch s {
	case SessionEmpty:
		return "No request yet"
	case SessionProposed:
		return "Proposal ready"
	case SessionChatting:
		return "Discussing proposal"
	default:
		return unknownDescription
	}
}

// SessionSnapshot is a read-only copy of a session's state.
type SessionSnapshot struct {
	ID         string             `json:"id"`
	State      SessionState       `json:"state"`
	Request    *CustomerRequest   `json:"request,omitempty"`
	Plans      []RetrievedPlan    `json:"plans"`
	Proposal   string             `json:"proposal,omitempty"`
	Transcript []ConversationTurn `json:"transcript"`

	// OpenPlanKey and OpenPlanURL describe the plan document the user last
	// opened, if any.
	OpenPlanKey string `json:"open_plan_key,omitempty"`
	OpenPlanURL string `json:"open_plan_url,omitempty"`
}
