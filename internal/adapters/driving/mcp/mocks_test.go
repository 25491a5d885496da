package mcp

import (
	"context"
	"slices"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	snapshot  *domain.SessionSnapshot
	reply     string
	url       string
	err       error
	nextID    string
	sessions  []string
	closed    []string
	submitted []domain.CustomerRequest
	openedKey string
	planData  []byte
}

func (m *mockSessionService) NewSession() string {
	m.sessions = append(m.sessions, m.nextID)
	return m.nextID
}

func (m *mockSessionService) SubmitRequest(_ context.Context, sessionID string, req domain.CustomerRequest) (*domain.SessionSnapshot, error) {
	m.submitted = append(m.submitted, req)
	if m.err != nil {
		return nil, m.err
	}
	snap := *m.snapshot
	snap.ID = sessionID
	return &snap, nil
}

func (m *mockSessionService) Chat(_ context.Context, _, _ string) (string, error) {
	return m.reply, m.err
}

func (m *mockSessionService) OpenPlan(_ context.Context, _, key string) (string, error) {
	m.openedKey = key
	return m.url, m.err
}

func (m *mockSessionService) ReadPlan(_ context.Context, _, key string) (*domain.PlanDocument, error) {
	m.openedKey = key
	if m.err != nil {
		return nil, m.err
	}
	return &domain.PlanDocument{Filename: key, ContentType: "application/pdf", Data: m.planData}, nil
}

func (m *mockSessionService) Snapshot(_ string) (*domain.SessionSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func (m *mockSessionService) CloseSession(sessionID string) error {
	if m.err != nil {
		return m.err
	}
	m.closed = append(m.closed, sessionID)
	m.sessions = slices.DeleteFunc(m.sessions, func(id string) bool { return id == sessionID })
	return nil
}

func (m *mockSessionService) Sessions() []string {
	return m.sessions
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	docs []domain.PlanDocument
	err  error
}

func (m *mockIngestService) Ingest(_ context.Context, doc domain.PlanDocument) (*domain.IngestResult, error) {
	m.docs = append(m.docs, doc)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{Filename: doc.Filename, Segments: 1}, nil
}

func (m *mockIngestService) IngestAll(ctx context.Context, docs []domain.PlanDocument) ([]domain.IngestResult, error) {
	results := make([]domain.IngestResult, 0, len(docs))
	for _, doc := range docs {
		r, err := m.Ingest(ctx, doc)
		if err != nil {
			return results, err
		}
		results = append(results, *r)
	}
	return results, nil
}
