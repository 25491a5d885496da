package driving

import (
	"context"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// SettingsService reads and updates the persisted configuration behind the
// settings commands.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error
	GetDefaults() domain.AppSettings

	// SetEmbeddingProvider and SetLLMProvider fall back to the provider's
	// environment variable when apiKey is empty, and to its default model
	// when model is empty.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetStorageBackend selects the plan datastore. dsn is only read for postgres.
	SetStorageBackend(backend domain.StorageBackend, dsn string) error

	// Validate reports the first setting that keeps the workflow from running.
	Validate() error

	// ValidateEmbeddingConfig and ValidateLLMConfig make a live call to the
	// configured provider.
	ValidateEmbeddingConfig(ctx context.Context) error
	ValidateLLMConfig(ctx context.Context) error

	// ConfigPath is where settings are written, for display.
	ConfigPath() string
}
