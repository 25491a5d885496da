package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
	embedding   []string
	llm         []string
	storage     []string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) ConfigPath() string {
	return "/home/test/.houseplan/config.toml"
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{provider.String(), model, apiKey}
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm = []string{provider.String(), model, apiKey}
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetStorageBackend(backend domain.StorageBackend, dsn string) error {
	m.storage = []string{backend.String(), dsn}
	m.settings.Storage.Backend = backend
	m.settings.Storage.DSN = dsn
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig(_ context.Context) error { return m.pingErr }

// mockIngestService records documents and fails on the configured filename.
type mockIngestService struct {
	mu     sync.Mutex
	docs   []domain.PlanDocument
	failOn string
	done   chan string
}

func (m *mockIngestService) Ingest(_ context.Context, doc domain.PlanDocument) (*domain.IngestResult, error) {
	m.mu.Lock()
	m.docs = append(m.docs, doc)
	m.mu.Unlock()

	if doc.Filename == m.failOn {
		return nil, domain.ErrExtraction
	}
	if m.done != nil {
		m.done <- doc.Filename
	}
	return &domain.IngestResult{
		StoragePath: "p/" + doc.Filename,
		Filename:    doc.Filename,
		Pages:       1,
		Segments:    2,
	}, nil
}

func (m *mockIngestService) IngestAll(ctx context.Context, docs []domain.PlanDocument) ([]domain.IngestResult, error) {
	var results []domain.IngestResult
	for _, doc := range docs {
		r, err := m.Ingest(ctx, doc)
		if err != nil {
			return results, err
		}
		results = append(results, *r)
	}
	return results, nil
}

func (m *mockIngestService) filenames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.docs))
	for _, d := range m.docs {
		names = append(names, d.Filename)
	}
	return names
}

// mockProposalService returns a fixed proposal.
type mockProposalService struct {
	requests []domain.CustomerRequest
	err      error
}

func (m *mockProposalService) Retrieve(_ context.Context, _ domain.CustomerRequest) ([]domain.RetrievedPlan, error) {
	return testPlans(), m.err
}

func (m *mockProposalService) Propose(_ context.Context, _ domain.CustomerRequest, _ []domain.RetrievedPlan) (string, error) {
	return "Plan 1: open living room", m.err
}

func (m *mockProposalService) Draft(_ context.Context, req domain.CustomerRequest) (*domain.Proposal, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	req.ID = "req-1"
	return &domain.Proposal{Request: req, Plans: testPlans(), Text: "Plan 1: open living room"}, nil
}

// mockSessionService echoes chat messages.
type mockSessionService struct {
	submitted []domain.CustomerRequest
	messages  []string
	opened    []string
	closed    []string
	chatErr   error
}

func (m *mockSessionService) NewSession() string { return "s-1" }

func (m *mockSessionService) SubmitRequest(_ context.Context, id string, req domain.CustomerRequest) (*domain.SessionSnapshot, error) {
	m.submitted = append(m.submitted, req)
	return &domain.SessionSnapshot{
		ID:       id,
		State:    domain.SessionProposed,
		Request:  &req,
		Plans:    testPlans(),
		Proposal: "Plan 1: open living room",
	}, nil
}

func (m *mockSessionService) Chat(_ context.Context, _, message string) (string, error) {
	m.messages = append(m.messages, message)
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return "reply to " + message, nil
}

func (m *mockSessionService) OpenPlan(_ context.Context, _, key string) (string, error) {
	m.opened = append(m.opened, key)
	return "file:///blobs/" + key + "?sig=abc", nil
}

func (m *mockSessionService) ReadPlan(_ context.Context, _, key string) (*domain.PlanDocument, error) {
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
}

func (m *mockSessionService) Snapshot(_ string) (*domain.SessionSnapshot, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSessionService) CloseSession(id string) error {
	m.closed = append(m.closed, id)
	return nil
}

func (m *mockSessionService) Sessions() []string { return nil }

func testPlans() []domain.RetrievedPlan {
	return []domain.RetrievedPlan{
		{StoragePath: "a/x.pdf?tok=1", Filename: "x.pdf", Score: 0.91},
		{StoragePath: "b/y.pdf", Filename: "y.pdf", Score: 0.74},
	}
}

type testServices struct {
	settings *mockSettingsService
	ingest   *mockIngestService
	proposal *mockProposalService
	session  *mockSessionService
}

var errBoom = errors.New("boom")

// setupTestServices installs mock services and returns a cleanup function
// that restores the previous services and flag values.
func setupTestServices() (*testServices, func()) {
	prev := Services{
		Settings: settingsService,
		Ingest:   ingestService,
		Proposal: proposalService,
		Session:  sessionService,
	}

	ts := &testServices{
		settings: newMockSettingsService(),
		ingest:   &mockIngestService{},
		proposal: &mockProposalService{},
		session:  &mockSessionService{},
	}
	SetServices(Services{
		Settings: ts.settings,
		Ingest:   ts.ingest,
		Proposal: ts.proposal,
		Session:  ts.session,
	})

	return ts, func() {
		SetServices(prev)
		proposeRequest = requestFlags{}
		proposeJSON = false
		chatRequest = requestFlags{}
		chatPlain = false
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// execute runs rootCmd with args and stdin, returning stdout and stderr.
func execute(stdin string, args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}
