package tui

import (
	"context"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	snapshot  *domain.SessionSnapshot
	reply     string
	url       string
	err       error
	chatErr   error
	submitted []domain.CustomerRequest
	sent      []string
	openedKey string
	planData  []byte
}

func (m *mockSessionService) NewSession() string { return "s-1" }

func (m *mockSessionService) SubmitRequest(_ context.Context, _ string, req domain.CustomerRequest) (*domain.SessionSnapshot, error) {
	m.submitted = append(m.submitted, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func (m *mockSessionService) Chat(_ context.Context, _, message string) (string, error) {
	m.sent = append(m.sent, message)
	return m.reply, m.chatErr
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
	if m.snapshot == nil {
		return &domain.SessionSnapshot{ID: "s-1", State: domain.SessionEmpty}, nil
	}
	return m.snapshot, nil
}

func (m *mockSessionService) CloseSession(_ string) error { return m.err }

func (m *mockSessionService) Sessions() []string { return []string{"s-1"} }
