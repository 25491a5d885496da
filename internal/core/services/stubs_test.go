package services

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// stubEmbedder maps text to a vector with embedFn, or to a fixed vector.
type stubEmbedder struct {
	mu      sync.Mutex
	embedFn func(text string) ([]float32, error)
	texts   []string
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.texts = append(e.texts, text)
	e.mu.Unlock()
	if e.embedFn != nil {
		return e.embedFn(text)
	}
	return []float32{1, 0, 0}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int             { return 3 }
func (e *stubEmbedder) ModelName() string           { return "stub-embed" }
func (e *stubEmbedder) Ping(_ context.Context) error { return nil }
func (e *stubEmbedder) Close() error                { return nil }

func (e *stubEmbedder) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.texts)
}

// stubLLM records prompts and conversations and answers with fixed text.
type stubLLM struct {
	mu        sync.Mutex
	reply     string
	err       error
	prompts   []string
	histories [][]driven.ChatMessage
}

func (l *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

func (l *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.histories = append(l.histories, slices.Clone(messages))
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

func (l *stubLLM) ModelName() string           { return "stub-llm" }
func (l *stubLLM) Ping(_ context.Context) error { return nil }
func (l *stubLLM) Close() error                { return nil }

func (l *stubLLM) set(reply string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reply, l.err = reply, err
}

func (l *stubLLM) lastHistory() []driven.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.histories) == 0 {
		return nil
	}
	return l.histories[len(l.histories)-1]
}

// stubExtractors returns fixed pages for every document.
type stubExtractors struct {
	pages []string
	err   error
}

func (x *stubExtractors) Pages(_ context.Context, _ domain.PlanDocument) (iter.Seq[string], error) {
	if x.err != nil {
		return nil, x.err
	}
	return slices.Values(x.pages), nil
}

func (x *stubExtractors) Register(_ driven.TextExtractor) {}
func (x *stubExtractors) SupportedMIMETypes() []string     { return []string{"application/pdf"} }

// stubPlanStore wraps the in-memory store with injectable failures and
// canned similarity results.
type stubPlanStore struct {
	*memory.PlanStore
	insertErr  error
	requestErr error
	queryErr   error
	hits       []domain.RetrievedPlan
	lastN      int
}

func newStubPlanStore() *stubPlanStore {
	return &stubPlanStore{PlanStore: memory.NewPlanStore()}
}

func (p *stubPlanStore) InsertSegments(ctx context.Context, segments []domain.FloorPlanSegment) ([]domain.FloorPlanSegment, error) {
	if p.insertErr != nil {
		return nil, p.insertErr
	}
	return p.PlanStore.InsertSegments(ctx, segments)
}

func (p *stubPlanStore) InsertRequest(ctx context.Context, req domain.CustomerRequest) (domain.CustomerRequest, error) {
	if p.requestErr != nil {
		return domain.CustomerRequest{}, p.requestErr
	}
	return p.PlanStore.InsertRequest(ctx, req)
}

func (p *stubPlanStore) TopNSimilar(ctx context.Context, query []float32, n int) ([]domain.RetrievedPlan, error) {
	p.lastN = n
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	if p.hits != nil {
		return p.hits[:min(n, len(p.hits))], nil
	}
	return p.PlanStore.TopNSimilar(ctx, query, n)
}

// testPrompts are minimal templates exercising every field the services pass.
func testPrompts() *memory.PromptStore {
	return memory.NewPromptStore(map[string]string{
		driven.PromptProposal: "family={{.Request.FamilySize}} rooms={{.Request.RoomCount}} " +
			"area={{.Area}} budget={{.Budget}} prefs={{.Request.Preferences}}\n" +
			"{{range .References}}ref={{.}}\n{{end}}",
		driven.PromptChatSystem: "previous proposal: {{.Proposal}}",
	})
}

func testRequest() domain.CustomerRequest {
	return domain.CustomerRequest{
		FamilySize:   4,
		RoomCount:    3,
		FloorAreaSqm: 120,
		Budget:       4500,
		Preferences:  "south-facing living room",
	}
}

func linesWithPrefix(text, prefix string) []string {
	var out []string
	for line := range strings.Lines(text) {
		if strings.HasPrefix(line, prefix) {
			out = append(out, strings.TrimSpace(strings.TrimPrefix(line, prefix)))
		}
	}
	return out
}
