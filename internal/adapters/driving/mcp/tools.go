package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers"
)

// IngestInput is the input schema for the ingest_plan tool.
type IngestInput struct {
	Paths []string `json:"paths" jsonschema:"local paths of floor-plan PDFs to register"`
}

// IngestOutput is the output schema for the ingest_plan tool.
type IngestOutput struct {
	Results []domain.IngestResult `json:"results"`
	Count   int                   `json:"count"`
}

// SubmitRequestInput is the input schema for the submit_request tool.
type SubmitRequestInput struct {
	SessionID   string  `json:"session_id,omitempty" jsonschema:"session to use; a new session is created when empty"`
	FamilySize  int     `json:"family_size" jsonschema:"number of people in the household"`
	Rooms       int     `json:"rooms" jsonschema:"number of rooms wanted"`
	AreaSqm     float64 `json:"area_sqm" jsonschema:"desired floor area in square metres"`
	Budget      float64 `json:"budget" jsonschema:"budget in ten-thousand yen units"`
	Preferences string  `json:"preferences,omitempty" jsonschema:"free-text preferences"`
}

// SubmitRequestOutput is the output schema for the submit_request tool.
type SubmitRequestOutput struct {
	SessionID string                 `json:"session_id"`
	State     string                 `json:"state"`
	Proposal  string                 `json:"proposal"`
	Plans     []domain.RetrievedPlan `json:"plans"`
}

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	SessionID string `json:"session_id" jsonschema:"session returned by submit_request"`
	Message   string `json:"message" jsonschema:"follow-up request about the proposal"`
}

// ChatOutput is the output schema for the chat tool.
type ChatOutput struct {
	Reply string `json:"reply"`
	Turns int    `json:"turns"`
}

// OpenPlanInput is the input schema for the open_plan tool.
type OpenPlanInput struct {
	SessionID string `json:"session_id" jsonschema:"session the plan was retrieved in"`
	Key       string `json:"key" jsonschema:"storage path of a retrieved plan"`
}

// OpenPlanOutput is the output schema for the open_plan tool.
type OpenPlanOutput struct {
	URL string `json:"url"`
}

// CloseSessionInput is the input schema for the close_session tool.
type CloseSessionInput struct {
	SessionID string `json:"session_id"`
}

// CloseSessionOutput is the output schema for the close_session tool.
type CloseSessionOutput struct {
	Closed bool `json:"closed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_plan",
		Description: "Register floor-plan PDFs so they can be retrieved for proposals",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_request",
		Description: "Submit a household's requirements and get a floor-plan proposal",
	}, s.handleSubmitRequest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Ask a follow-up question about the current proposal",
	}, s.handleChat)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "open_plan",
		Description: "Get a temporary link to one of the retrieved floor plans",
	}, s.handleOpenPlan)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "close_session",
		Description: "Discard a session and its conversation",
	}, s.handleCloseSession)
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, ErrMissingIngestService
	}

	docs := make([]domain.PlanDocument, 0, len(input.Paths))
	for _, path := range input.Paths {
		doc, err := normalisers.LoadDocument(path)
		if err != nil {
			return nil, IngestOutput{}, err
		}
		docs = append(docs, doc)
	}

	results, err := s.ports.Ingest.IngestAll(ctx, docs)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{Results: results, Count: len(results)}, nil
}

func (s *Server) handleSubmitRequest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitRequestInput,
) (*mcp.CallToolResult, SubmitRequestOutput, error) {
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = s.newSession()
	}

	snap, err := s.ports.Session.SubmitRequest(ctx, sessionID, domain.CustomerRequest{
		FamilySize:   input.FamilySize,
		RoomCount:    input.Rooms,
		FloorAreaSqm: input.AreaSqm,
		Budget:       input.Budget,
		Preferences:  input.Preferences,
	})
	if err != nil {
		return nil, SubmitRequestOutput{}, err
	}

	return nil, SubmitRequestOutput{
		SessionID: snap.ID,
		State:     snap.State.String(),
		Proposal:  snap.Proposal,
		Plans:     snap.Plans,
	}, nil
}

func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	reply, err := s.ports.Session.Chat(ctx, input.SessionID, input.Message)
	if err != nil {
		return nil, ChatOutput{}, err
	}

	output := ChatOutput{Reply: reply}
	if snap, err := s.ports.Session.Snapshot(input.SessionID); err == nil {
		output.Turns = len(snap.Transcript)
	}
	return nil, output, nil
}

func (s *Server) handleOpenPlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OpenPlanInput,
) (*mcp.CallToolResult, OpenPlanOutput, error) {
	url, err := s.ports.Session.OpenPlan(ctx, input.SessionID, input.Key)
	if err != nil {
		return nil, OpenPlanOutput{}, err
	}
	return nil, OpenPlanOutput{URL: url}, nil
}

func (s *Server) handleCloseSession(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CloseSessionInput,
) (*mcp.CallToolResult, CloseSessionOutput, error) {
	if err := s.ports.Session.CloseSession(input.SessionID); err != nil {
		return nil, CloseSessionOutput{}, err
	}
	return nil, CloseSessionOutput{Closed: true}, nil
}
