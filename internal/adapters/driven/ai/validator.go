package ai

import (
	"context"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = ConfigValidator{}

// ConfigValidator lets the settings service check provider credentials
// without importing the adapters. Both checks build a throwaway client and
// ping it.
type ConfigValidator struct{}

// NewConfigValidator returns a ConfigValidator.
func NewConfigValidator() ConfigValidator {
	return ConfigValidator{}
}

// ValidateEmbedding pings the embedding provider described by config.
func (ConfigValidator) ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(ctx, config)
}

// ValidateLLM pings the LLM provider described by config.
func (ConfigValidator) ValidateLLM(ctx context.Context, config *domain.LLMSettings) error {
	return ValidateLLMConfig(ctx, config)
}
