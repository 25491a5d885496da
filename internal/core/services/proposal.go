package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driving"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

// Ensure ProposalService implements the interface.
var _ driving.ProposalService = (*ProposalService)(nil)

// ProposalService retrieves plans similar to a customer request and drafts
// a proposal from them.
type ProposalService struct {
	plans    driven.PlanStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore
	topN     int
}

// NewProposalService creates a proposal service. topN below one falls back
// to domain.DefaultTopN.
func NewProposalService(
	plans driven.PlanStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	topN int,
) *ProposalService {
	if topN < 1 {
		topN = domain.DefaultTopN
	}
	return &ProposalService{
		plans:    plans,
		embedder: embedder,
		llm:      llm,
		prompts:  prompts,
		topN:     topN,
	}
}

// proposalData is the template data for the proposal prompt.
type proposalData struct {
	Request    domain.CustomerRequest
	Area       string
	Budget     string
	References []string
}

// Retrieve embeds the request summary and returns the deduplicated nearest plans.
func (s *ProposalService) Retrieve(ctx context.Context, req domain.CustomerRequest) ([]domain.RetrievedPlan, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	defer logger.Timed("retrieve")()

	summary := req.Summary()
	vec, err := s.embedder.Embed(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("%w: request summary: %w", domain.ErrEmbedding, err)
	}

	hits, err := s.plans.TopNSimilar(ctx, vec, s.topN)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity query: %w", domain.ErrStorage, err)
	}

	plans := domain.DedupePlans(hits)
	logger.Debug("Query %q: %d hits, %d distinct plans", summary, len(hits), len(plans))
	return plans, nil
}

// Propose generates proposal text. An empty plan list still produces a
// proposal with no reference drawings.
func (s *ProposalService) Propose(ctx context.Context, req domain.CustomerRequest, plans []domain.RetrievedPlan) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	prompt, err := s.renderProposalPrompt(req, plans)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	defer logger.Timed("generate proposal")()
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyGeneration
	}
	return text, nil
}

// Draft validates and records the request, then retrieves and proposes.
func (s *ProposalService) Draft(ctx context.Context, req domain.CustomerRequest) (*domain.Proposal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Proposal")
	// Edited prompt files apply from the next request on.
	if s.prompts != nil {
		s.prompts.Reload()
	}

	stored, err := s.plans.InsertRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: record request: %w", domain.ErrStorage, err)
	}

	plans, err := s.Retrieve(ctx, stored)
	if err != nil {
		return nil, err
	}

	text, err := s.Propose(ctx, stored, plans)
	if err != nil {
		return nil, err
	}

	return &domain.Proposal{
		Request: stored,
		Plans:   plans,
		Text:    text,
	}, nil
}

func (s *ProposalService) renderProposalPrompt(req domain.CustomerRequest, plans []domain.RetrievedPlan) (string, error) {
	refs := make([]string, 0, len(plans))
	for _, p := range plans {
		refs = append(refs, p.Filename)
	}
	return renderPrompt(s.prompts, driven.PromptProposal, proposalData{
		Request:    req,
		Area:       domain.FormatNumber(req.FloorAreaSqm),
		Budget:     domain.FormatNumber(req.Budget),
		References: refs,
	})
}

// renderPrompt loads a prompt template by name and executes it with data.
func renderPrompt(prompts driven.PromptStore, name string, data any) (string, error) {
	if prompts == nil {
		return "", fmt.Errorf("prompt %q: no prompt store configured", name)
	}
	text, err := prompts.Load(name)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}
