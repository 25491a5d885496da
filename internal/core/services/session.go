package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driving"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionService = (*SessionManager)(nil)

// failedReplyPrefix marks assistant turns recorded for failed generations.
const failedReplyPrefix = "[error] "

// session holds the state of one conversation. mu serialises every
// operation on the session so a chat never interleaves with a resubmission.
type session struct {
	mu sync.Mutex

	id         string
	state      domain.SessionState
	request    *domain.CustomerRequest
	plans      []domain.RetrievedPlan
	proposal   string
	transcript []domain.ConversationTurn
	openKey    string
	openURL    string
	closed     bool
}

func (s *session) snapshot() *domain.SessionSnapshot {
	snap := &domain.SessionSnapshot{
		ID:          s.id,
		State:       s.state,
		Plans:       slices.Clone(s.plans),
		Proposal:    s.proposal,
		Transcript:  slices.Clone(s.transcript),
		OpenPlanKey: s.openKey,
		OpenPlanURL: s.openURL,
	}
	if snap.Plans == nil {
		snap.Plans = []domain.RetrievedPlan{}
	}
	if snap.Transcript == nil {
		snap.Transcript = []domain.ConversationTurn{}
	}
	if s.request != nil {
		req := *s.request
		snap.Request = &req
	}
	return snap
}

// SessionManager runs the request, proposal and chat workflow for any
// number of independent sessions.
type SessionManager struct {
	proposals driving.ProposalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	blobs     driven.BlobStore
	urlTTL    time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionManager creates a session manager. urlTTL below or equal to
// zero falls back to domain.DefaultSignedURLTTL.
func NewSessionManager(
	proposals driving.ProposalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	blobs driven.BlobStore,
	urlTTL time.Duration,
) *SessionManager {
	if urlTTL <= 0 {
		urlTTL = domain.DefaultSignedURLTTL
	}
	return &SessionManager{
		proposals: proposals,
		llm:       llm,
		prompts:   prompts,
		blobs:     blobs,
		urlTTL:    urlTTL,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// NewSession creates an empty session and returns its ID.
func (m *SessionManager) NewSession() string {
	s := &session{id: uuid.NewString(), state: domain.SessionEmpty}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	logger.Debug("Opened session %s", s.id)
	return s.id
}

// SubmitRequest drafts a proposal and replaces the session state with it.
// On failure the previous state is left untouched.
func (m *SessionManager) SubmitRequest(ctx context.Context, sessionID string, req domain.CustomerRequest) (*domain.SessionSnapshot, error) {
	s, err := m.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	proposal, err := m.proposals.Draft(ctx, req)
	if err != nil {
		return nil, err
	}

	stored := proposal.Request
	s.state = domain.SessionProposed
	s.request = &stored
	s.plans = proposal.Plans
	s.proposal = proposal.Text
	s.transcript = nil
	s.openKey, s.openURL = "", ""

	logger.Info("Session %s: proposal ready with %d candidate plans", s.id, len(s.plans))
	return s.snapshot(), nil
}

// chatSystemData is the template data for the chat system prompt.
type chatSystemData struct {
	Proposal string
}

// Chat sends a follow-up message and returns the assistant reply. A failed
// reply is recorded as a marked assistant turn so the transcript keeps
// alternating, and is never sent back to the generator.
func (m *SessionManager) Chat(ctx context.Context, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	s, err := m.acquire(sessionID)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	if s.state == domain.SessionEmpty {
		return "", domain.ErrNoProposal
	}
	if m.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	system, err := renderPrompt(m.prompts, driven.PromptChatSystem, chatSystemData{Proposal: s.proposal})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	messages := make([]driven.ChatMessage, 0, len(s.transcript)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.ChatRoleSystem, Content: system})
	for _, turn := range s.transcript {
		if turn.Failed {
			continue
		}
		messages = append(messages, driven.ChatMessage{Role: turn.Role.String(), Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: driven.ChatRoleUser, Content: message})

	s.transcript = append(s.transcript, domain.ConversationTurn{
		Role:      domain.RoleUser,
		Content:   message,
		CreatedAt: m.now(),
	})
	s.state = domain.SessionChatting

	done := logger.Timed("chat reply")
	reply, err := m.llm.Chat(ctx, messages, driven.ChatOptions{})
	done()
	if err == nil && strings.TrimSpace(reply) == "" {
		err = domain.ErrEmptyGeneration
	} else if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	if err != nil {
		s.transcript = append(s.transcript, domain.ConversationTurn{
			Role:      domain.RoleAssistant,
			Content:   failedReplyPrefix + err.Error(),
			Failed:    true,
			CreatedAt: m.now(),
		})
		logger.Warn("Session %s: chat reply failed: %v", s.id, err)
		return "", err
	}

	s.transcript = append(s.transcript, domain.ConversationTurn{
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: m.now(),
	})
	return reply, nil
}

// OpenPlan issues a signed URL for one of the session's retrieved plans.
func (m *SessionManager) OpenPlan(ctx context.Context, sessionID, key string) (string, error) {
	s, err := m.acquire(sessionID)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	plan, ok := domain.FindPlan(s.plans, key)
	if !ok {
		return "", fmt.Errorf("%w: plan %q is not among the session's candidates", domain.ErrNotFound, key)
	}

	url, err := m.blobs.SignedURL(ctx, plan.Key(), m.urlTTL)
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %w", domain.ErrStorage, plan.Key(), err)
	}

	s.openKey, s.openURL = plan.Key(), url
	return url, nil
}

// ReadPlan fetches the original bytes of one of the session's retrieved plans.
func (m *SessionManager) ReadPlan(ctx context.Context, sessionID, key string) (*domain.PlanDocument, error) {
	s, err := m.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	plan, ok := domain.FindPlan(s.plans, key)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: plan %q is not among the session's candidates", domain.ErrNotFound, key)
	}

	data, err := m.blobs.Get(ctx, plan.Key())
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStorage, plan.Key(), err)
	}

	contentType := mime.TypeByExtension(path.Ext(plan.Filename))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &domain.PlanDocument{Filename: plan.Filename, ContentType: contentType, Data: data}, nil
}

// Snapshot returns a copy of the session state.
func (m *SessionManager) Snapshot(sessionID string) (*domain.SessionSnapshot, error) {
	s, err := m.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// CloseSession discards a session. Operations waiting on it fail with
// domain.ErrSessionClosed.
func (m *SessionManager) CloseSession(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	logger.Debug("Closed session %s", sessionID)
	return nil
}

// Sessions returns the IDs of all open sessions, sorted.
func (m *SessionManager) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// acquire looks up a session and returns it locked.
func (m *SessionManager) acquire(sessionID string) (*session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	return s, nil
}
