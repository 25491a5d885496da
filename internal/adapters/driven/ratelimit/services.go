package ratelimit

import (
	"context"

	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.LLMService       = (*LLMService)(nil)
)

// EmbeddingService throttles an embedding provider.
type EmbeddingService struct {
	driven.EmbeddingService
	limiter *Limiter
}

// WrapEmbedding returns svc throttled by limiter. A nil service stays nil.
func WrapEmbedding(svc driven.EmbeddingService, limiter *Limiter) driven.EmbeddingService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &EmbeddingService{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for the limiter, then embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := s.EmbeddingService.Embed(ctx, text)
	return v, s.limiter.Observe(err)
}

// EmbedBatch counts as one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	return v, s.limiter.Observe(err)
}

// LLMService throttles a text generation provider.
type LLMService struct {
	driven.LLMService
	limiter *Limiter
}

// WrapLLM returns svc throttled by limiter. A nil service stays nil.
func WrapLLM(svc driven.LLMService, limiter *Limiter) driven.LLMService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &LLMService{LLMService: svc, limiter: limiter}
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.LLMService.Generate(ctx, prompt, opts)
	return out, s.limiter.Observe(err)
}

func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.LLMService.Chat(ctx, messages, opts)
	return out, s.limiter.Observe(err)
}
