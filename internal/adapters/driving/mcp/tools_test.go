package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

func newTestServer(t *testing.T, sessions *mockSessionService, ingest *mockIngestService) *Server {
	t.Helper()
	ports := &Ports{Session: sessions}
	if ingest != nil {
		ports.Ingest = ingest
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))

	t.Run("ingests files from disk", func(t *testing.T) {
		ingest := &mockIngestService{}
		server := newTestServer(t, &mockSessionService{}, ingest)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Paths: []string{path}})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, ingest.docs, 1)
		assert.Equal(t, "plan.pdf", ingest.docs[0].Filename)
		assert.Equal(t, "application/pdf", ingest.docs[0].ContentType)
	})

	t.Run("missing file", func(t *testing.T) {
		server := newTestServer(t, &mockSessionService{}, &mockIngestService{})
		_, _, err := server.handleIngest(ctx, nil, IngestInput{Paths: []string{filepath.Join(dir, "nope.pdf")}})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no ingest service", func(t *testing.T) {
		server := newTestServer(t, &mockSessionService{}, nil)
		_, _, err := server.handleIngest(ctx, nil, IngestInput{Paths: []string{path}})
		assert.ErrorIs(t, err, ErrMissingIngestService)
	})
}

func TestServer_handleSubmitRequest(t *testing.T) {
	ctx := context.Background()
	snapshot := &domain.SessionSnapshot{
		State:    domain.SessionProposed,
		Proposal: "three plans",
		Plans:    []domain.RetrievedPlan{{StoragePath: "a/x.pdf", Filename: "x.pdf"}},
	}

	t.Run("creates a session when none given", func(t *testing.T) {
		sessions := &mockSessionService{snapshot: snapshot, nextID: "new-session"}
		server := newTestServer(t, sessions, nil)

		_, output, err := server.handleSubmitRequest(ctx, nil, SubmitRequestInput{
			FamilySize: 4, Rooms: 3, AreaSqm: 120, Budget: 4500, Preferences: "garden",
		})

		require.NoError(t, err)
		assert.Equal(t, "new-session", output.SessionID)
		assert.Equal(t, "PROPOSED", output.State)
		assert.Equal(t, "three plans", output.Proposal)
		assert.Len(t, output.Plans, 1)
		assert.Equal(t, domain.CustomerRequest{
			FamilySize: 4, RoomCount: 3, FloorAreaSqm: 120, Budget: 4500, Preferences: "garden",
		}, sessions.submitted[0])
	})

	t.Run("reuses an existing session", func(t *testing.T) {
		sessions := &mockSessionService{snapshot: snapshot}
		server := newTestServer(t, sessions, nil)

		_, output, err := server.handleSubmitRequest(ctx, nil, SubmitRequestInput{SessionID: "s-1", FamilySize: 1})

		require.NoError(t, err)
		assert.Equal(t, "s-1", output.SessionID)
		assert.Empty(t, sessions.sessions)
	})

	t.Run("propagates errors", func(t *testing.T) {
		sessions := &mockSessionService{err: domain.ErrGeneration, nextID: "x"}
		server := newTestServer(t, sessions, nil)
		_, _, err := server.handleSubmitRequest(ctx, nil, SubmitRequestInput{})
		assert.ErrorIs(t, err, domain.ErrGeneration)
	})
}

func TestServer_handleChat(t *testing.T) {
	ctx := context.Background()

	sessions := &mockSessionService{
		reply: "a larger kitchen fits plan 2",
		snapshot: &domain.SessionSnapshot{Transcript: []domain.ConversationTurn{
			{Role: domain.RoleUser}, {Role: domain.RoleAssistant},
		}},
	}
	server := newTestServer(t, sessions, nil)

	_, output, err := server.handleChat(ctx, nil, ChatInput{SessionID: "s-1", Message: "bigger kitchen?"})

	require.NoError(t, err)
	assert.Equal(t, "a larger kitchen fits plan 2", output.Reply)
	assert.Equal(t, 2, output.Turns)

	sessions.err = domain.ErrNoProposal
	_, _, err = server.handleChat(ctx, nil, ChatInput{SessionID: "s-1", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrNoProposal)
}

func TestServer_handleOpenPlan(t *testing.T) {
	sessions := &mockSessionService{url: "file:///plans/a/x.pdf?expires=1&sig=abc"}
	server := newTestServer(t, sessions, nil)

	_, output, err := server.handleOpenPlan(context.Background(), nil, OpenPlanInput{SessionID: "s-1", Key: "a/x.pdf"})

	require.NoError(t, err)
	assert.Equal(t, sessions.url, output.URL)
	assert.Equal(t, "a/x.pdf", sessions.openedKey)
}

func TestServer_handleCloseSession(t *testing.T) {
	sessions := &mockSessionService{}
	server := newTestServer(t, sessions, nil)

	_, output, err := server.handleCloseSession(context.Background(), nil, CloseSessionInput{SessionID: "s-1"})

	require.NoError(t, err)
	assert.True(t, output.Closed)
	assert.Equal(t, []string{"s-1"}, sessions.closed)
}
