// Package ai builds the embedding and LLM adapters selected in settings,
// checks that they answer, and puts a rate limiter in front of them.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/houseplan-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/houseplan-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/houseplan-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/houseplan-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/houseplan-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

const (
	pingTimeout = 5 * time.Second
	fixHint     = "Run 'houseplan settings' to fix"
)

// service is what every adapter offers for health checks.
type service interface {
	Ping(context.Context) error
	Close() error
}

// InitResult holds the services built at startup. A nil service means the
// provider is unset or did not answer; Warnings says which.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string
}

func (r *InitResult) Close() {
	for _, s := range []service{r.EmbeddingService, r.LLMService} {
		if s != nil {
			s.Close()
		}
	}
}

// Initialise never fails. Startup continues without a provider that is
// missing or unreachable so the settings commands stay usable.
func Initialise(ctx context.Context, settings *domain.AppSettings) *InitResult {
	result := &InitResult{}

	emb, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else if emb != nil {
		logger.Debug("Embedding model: %s (%d dimensions)", emb.ModelName(), emb.Dimensions())
	}

	llm, err := CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else if llm != nil {
		logger.Debug("LLM model: %s", llm.ModelName())
	}

	// Separate buckets, so a large ingest cannot starve chat replies.
	result.EmbeddingService = ratelimit.WrapEmbedding(emb, ratelimit.New(settings.RateLimit))
	result.LLMService = ratelimit.WrapLLM(llm, ratelimit.New(settings.RateLimit))

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result
}

// CreateAndValidateEmbeddingService returns nil, nil when no provider is set.
// Errors wrap domain.ErrEmbeddingUnavailable.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	return connect(ctx, svc, err, domain.ErrEmbeddingUnavailable)
}

// CreateAndValidateLLMService returns nil, nil when no provider is set.
// Errors wrap domain.ErrLLMUnavailable.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	return connect(ctx, svc, err, domain.ErrLLMUnavailable)
}

// connect pings a freshly built service and closes it when it does not answer.
func connect[S service](ctx context.Context, svc S, err error, unavailable error) (S, error) {
	var none S
	if err != nil {
		return none, fmt.Errorf("%w: %w. %s", unavailable, err, fixHint)
	}
	if any(svc) == nil {
		return none, nil
	}
	if err := ping(ctx, svc); err != nil {
		svc.Close()
		return none, fmt.Errorf("%w: service unreachable (%w). %s", unavailable, err, fixHint)
	}
	return svc, nil
}

// ValidateEmbeddingConfig pings a throwaway client for settings. Unset
// settings pass.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	return probe(ctx, svc, err)
}

// ValidateLLMConfig pings a throwaway client for settings. Unset settings pass.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	return probe(ctx, svc, err)
}

func probe[S service](ctx context.Context, svc S, err error) error {
	if err != nil || any(svc) == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc)
}

func ping(ctx context.Context, svc service) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService builds the configured adapter without contacting
// it. It returns nil, nil for unset or incomplete settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
}

// CreateLLMService builds the configured adapter without contacting it. It
// returns nil, nil for unset or incomplete settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: settings.BaseURL, Model: settings.Model})
	case domain.AIProviderOpenAI:
		var s *openaillm.LLMService
		s, err = openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		svc = s
	case domain.AIProviderAnthropic:
		var s *anthropicllm.LLMService
		s, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		svc = s
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}
