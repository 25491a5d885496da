package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

func newProposalFixture() (*ProposalService, *stubPlanStore, *stubEmbedder, *stubLLM) {
	plans := newStubPlanStore()
	embedder := &stubEmbedder{}
	llm := &stubLLM{reply: "Plan 1: open-plan living room"}
	return NewProposalService(plans, embedder, llm, testPrompts(), 3), plans, embedder, llm
}

func TestProposalService_Retrieve_DedupesTokenSuffixes(t *testing.T) {
	svc, plans, embedder, _ := newProposalFixture()
	plans.hits = []domain.RetrievedPlan{
		{StoragePath: "a/x.pdf?tok=1", Filename: "x.pdf", Score: 0.9},
		{StoragePath: "a/x.pdf?tok=2", Filename: "x.pdf", Score: 0.8},
		{StoragePath: "b/y.pdf?tok=9", Filename: "y.pdf", Score: 0.7},
	}

	got, err := svc.Retrieve(context.Background(), testRequest())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a/x.pdf?tok=2", got[0].StoragePath)
	assert.Equal(t, "b/y.pdf?tok=9", got[1].StoragePath)
	assert.Equal(t, 3, plans.lastN)
	assert.Equal(t, []string{testRequest().Summary()}, embedder.texts)
}

func TestProposalService_Retrieve_AtMostTopNDescending(t *testing.T) {
	svc, plans, _, _ := newProposalFixture()
	ctx := context.Background()

	vectors := [][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0, 1, 0}, {0.7, 0.7, 0}, {0, 0, 1}}
	for i, v := range vectors {
		_, err := plans.InsertSegment(ctx, domain.FloorPlanSegment{
			StoragePath: string(rune('a'+i)) + "/plan.pdf",
			Filename:    "plan.pdf",
			Embedding:   v,
		})
		require.NoError(t, err)
	}

	got, err := svc.Retrieve(ctx, testRequest())

	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	assert.Equal(t, "a/plan.pdf", got[0].StoragePath)
}

func TestProposalService_Retrieve_Errors(t *testing.T) {
	svc, plans, embedder, _ := newProposalFixture()

	embedder.embedFn = func(string) ([]float32, error) { return nil, errors.New("timeout") }
	_, err := svc.Retrieve(context.Background(), testRequest())
	assert.ErrorIs(t, err, domain.ErrEmbedding)

	embedder.embedFn = nil
	plans.queryErr = errors.New("connection refused")
	_, err = svc.Retrieve(context.Background(), testRequest())
	assert.ErrorIs(t, err, domain.ErrStorage)

	svc.embedder = nil
	_, err = svc.Retrieve(context.Background(), testRequest())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestProposalService_Propose_RendersRequestAndReferences(t *testing.T) {
	svc, _, _, llm := newProposalFixture()
	req := testRequest()
	req.FloorAreaSqm = 87.5

	text, err := svc.Propose(context.Background(), req, []domain.RetrievedPlan{
		{StoragePath: "a/x.pdf?tok=2", Filename: "x.pdf"},
		{StoragePath: "b/y.pdf", Filename: "y.pdf"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Plan 1: open-plan living room", text)
	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "family=4 rooms=3 area=87.5 budget=4500 prefs=south-facing living room")
	assert.Equal(t, []string{"x.pdf", "y.pdf"}, linesWithPrefix(prompt, "ref="))
}

func TestProposalService_Propose_NoCandidates(t *testing.T) {
	svc, _, _, llm := newProposalFixture()

	text, err := svc.Propose(context.Background(), testRequest(), nil)

	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Empty(t, linesWithPrefix(llm.prompts[0], "ref="))
}

func TestProposalService_Propose_Errors(t *testing.T) {
	svc, _, _, llm := newProposalFixture()

	llm.set("", errors.New("overloaded"))
	_, err := svc.Propose(context.Background(), testRequest(), nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)

	llm.set(" \n ", nil)
	_, err = svc.Propose(context.Background(), testRequest(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyGeneration)
	assert.ErrorIs(t, err, domain.ErrGeneration)

	svc.llm = nil
	_, err = svc.Propose(context.Background(), testRequest(), nil)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestProposalService_Draft(t *testing.T) {
	svc, plans, _, _ := newProposalFixture()
	plans.hits = []domain.RetrievedPlan{{StoragePath: "a/x.pdf", Filename: "x.pdf", Score: 0.5}}

	proposal, err := svc.Draft(context.Background(), testRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, proposal.Request.ID)
	assert.False(t, proposal.Request.CreatedAt.IsZero())
	assert.Len(t, proposal.Plans, 1)
	assert.Equal(t, "Plan 1: open-plan living room", proposal.Text)
}

// reloadCountingPrompts counts Reload calls.
type reloadCountingPrompts struct {
	*memory.PromptStore
	reloads int
}

func (p *reloadCountingPrompts) Reload() { p.reloads++ }

func TestProposalService_Draft_ReloadsPrompts(t *testing.T) {
	prompts := &reloadCountingPrompts{PromptStore: testPrompts()}
	svc := NewProposalService(newStubPlanStore(), &stubEmbedder{}, &stubLLM{reply: "ok"}, prompts, 3)

	_, err := svc.Draft(context.Background(), testRequest())
	require.NoError(t, err)
	_, err = svc.Draft(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, prompts.reloads)
}

func TestProposalService_Draft_ZeroCandidates(t *testing.T) {
	svc, _, _, _ := newProposalFixture()

	proposal, err := svc.Draft(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Empty(t, proposal.Plans)
	assert.NotEmpty(t, proposal.Text)
}

func TestProposalService_Draft_Errors(t *testing.T) {
	svc, plans, _, llm := newProposalFixture()

	_, err := svc.Draft(context.Background(), domain.CustomerRequest{FamilySize: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, llm.prompts)

	plans.requestErr = errors.New("read-only database")
	_, err = svc.Draft(context.Background(), testRequest())
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestNewProposalService_DefaultTopN(t *testing.T) {
	svc := NewProposalService(newStubPlanStore(), nil, nil, nil, 0)
	assert.Equal(t, domain.DefaultTopN, svc.topN)
}

func TestRenderPrompt_Errors(t *testing.T) {
	_, err := renderPrompt(nil, "proposal", nil)
	assert.Error(t, err)

	_, err = renderPrompt(testPrompts(), "missing", nil)
	assert.Error(t, err)
}
