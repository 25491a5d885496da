package services

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Flat config keys outside the two provider sections.
const (
	keyRateRPS        = "ratelimit.requests_per_second"
	keyRateBurst      = "ratelimit.burst"
	keyStorageBackend = "storage.backend"
	keyStorageDSN     = "storage.dsn"
	keyStorageDataDir = "storage.data_dir"
	keyBlobDir        = "blob.dir"
	keyBlobSigningKey = "blob.signing_key" //nolint:gosec // G101: key name
	keyIngestMaxChars = "ingest.max_chars"
	keyIngestAttempts = "ingest.max_attempts"
	keyRetrievalTopN  = "retrieval.top_n"
	keyRetrievalTTL   = "retrieval.signed_url_ttl"
)

const defaultOllamaURL = "http://localhost:11434"

// providerKeyEnv fills API keys the config file leaves empty.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// providerRole is one of the two provider sections of the config file.
type providerRole struct {
	section  string
	label    string
	allowed  func() []domain.AIProvider
	defaults func() map[domain.AIProvider]string
	pick     func(*domain.AppSettings) *domain.ProviderSettings
}

var (
	embeddingRole = providerRole{
		section:  "embedding",
		label:    "embeddings",
		allowed:  domain.AllEmbeddingProviders,
		defaults: domain.DefaultEmbeddingModels,
		pick:     func(s *domain.AppSettings) *domain.ProviderSettings { return &s.Embedding },
	}
	llmRole = providerRole{
		section:  "llm",
		label:    "text generation",
		allowed:  domain.AllLLMProviders,
		defaults: domain.DefaultLLMModels,
		pick:     func(s *domain.AppSettings) *domain.ProviderSettings { return &s.LLM },
	}
)

func (r providerRole) key(name string) string { return r.section + "." + name }

// SettingsService maps domain.AppSettings onto the flat keys of a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService builds the service. aiValidator may be nil, in which
// case provider checks always pass.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get reads every setting. Missing or unrecognised values fall back to
// domain.DefaultAppSettings, and empty API keys to the provider's
// environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	ttl, err := s.duration(keyRetrievalTTL, d.Retrieval.SignedURLTTL)
	if err != nil {
		return nil, err
	}

	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		backend = d.Storage.Backend
	}

	return &domain.AppSettings{
		Embedding: s.readProvider(embeddingRole),
		LLM:       s.readProvider(llmRole),
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.float(keyRateRPS, d.RateLimit.RequestsPerSecond),
			Burst:             s.positive(keyRateBurst, d.RateLimit.Burst),
		},
		Storage: domain.StorageSettings{
			Backend: backend,
			DSN:     s.configStore.GetString(keyStorageDSN),
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Blob: domain.BlobSettings{
			Dir:        s.configStore.GetString(keyBlobDir),
			SigningKey: s.configStore.GetString(keyBlobSigningKey),
		},
		Ingest: domain.IngestSettings{
			MaxChars:    s.positive(keyIngestMaxChars, d.Ingest.MaxChars),
			MaxAttempts: s.positive(keyIngestAttempts, d.Ingest.MaxAttempts),
		},
		Retrieval: domain.RetrievalSettings{
			TopN:         s.positive(keyRetrievalTopN, d.Retrieval.TopN),
			SignedURLTTL: ttl,
		},
	}, nil
}

func (s *SettingsService) readProvider(r providerRole) domain.ProviderSettings {
	ps := domain.ProviderSettings{
		Provider: domain.AIProvider(s.configStore.GetString(r.key("provider"))),
		Model:    s.configStore.GetString(r.key("model")),
		BaseURL:  s.configStore.GetString(r.key("base_url")),
		APIKey:   s.configStore.GetString(r.key("api_key")),
	}
	if !ps.Provider.IsValid() {
		ps.Provider = ""
	}
	if ps.APIKey == "" {
		ps.APIKey = s.envKey(ps.Provider)
	}
	return ps
}

// Save writes every setting. An API key is only written when it differs
// from the environment, so keys taken from the environment stay out of the
// file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyRateRPS:        settings.RateLimit.RequestsPerSecond,
		keyRateBurst:      settings.RateLimit.Burst,
		keyStorageBackend: settings.Storage.Backend.String(),
		keyStorageDSN:     settings.Storage.DSN,
		keyStorageDataDir: settings.Storage.DataDir,
		keyBlobDir:        settings.Blob.Dir,
		keyBlobSigningKey: settings.Blob.SigningKey,
		keyIngestMaxChars: settings.Ingest.MaxChars,
		keyIngestAttempts: settings.Ingest.MaxAttempts,
		keyRetrievalTopN:  settings.Retrieval.TopN,
		keyRetrievalTTL:   settings.Retrieval.SignedURLTTL.String(),
	}
	for _, r := range []providerRole{embeddingRole, llmRole} {
		ps := r.pick(settings)
		values[r.key("provider")] = ps.Provider.String()
		values[r.key("model")] = ps.Model
		values[r.key("base_url")] = ps.BaseURL
		if ps.APIKey != "" && ps.APIKey != s.envKey(ps.Provider) {
			values[r.key("api_key")] = ps.APIKey
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := s.configStore.Set(k, values[k]); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setProvider(embeddingRole, provider, model, apiKey)
}

func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setProvider(llmRole, provider, model, apiKey)
}

func (s *SettingsService) setProvider(r providerRole, provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(r.allowed(), provider) {
		return fmt.Errorf("%w: %q does not offer %s", domain.ErrInvalidInput, provider, r.label)
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: %s needs an API key", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = r.defaults()[provider]
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	ps := r.pick(settings)

	// Hosted adapters know their endpoints.
	baseURL := ""
	if provider.IsLocal() {
		baseURL = ps.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
	}
	*ps = domain.ProviderSettings{Provider: provider, Model: model, BaseURL: baseURL, APIKey: apiKey}

	return s.Save(settings)
}

func (s *SettingsService) SetStorageBackend(backend domain.StorageBackend, dsn string) error {
	switch {
	case !backend.IsValid():
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, backend)
	case backend == domain.StoragePostgres && dsn == "":
		return fmt.Errorf("%w: postgres requires a connection string", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Storage.Backend = backend
	if backend == domain.StoragePostgres {
		settings.Storage.DSN = dsn
	}
	return s.Save(settings)
}

// Validate lists every problem that would stop ingest or proposals.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	checks := []struct {
		failed  bool
		problem string
	}{
		{!settings.Embedding.IsConfigured(), "embedding provider is not configured"},
		{!settings.LLM.IsConfigured(), "LLM provider is not configured"},
		{settings.Storage.Backend == domain.StoragePostgres && settings.Storage.DSN == "", "postgres backend needs storage.dsn"},
		{settings.Retrieval.SignedURLTTL <= 0, "retrieval.signed_url_ttl must be positive"},
	}
	var problems []string
	for _, c := range checks {
		if c.failed {
			problems = append(problems, c.problem)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding)
}

func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.LLM)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	name, ok := providerKeyEnv[provider]
	if !ok || s.getenv == nil {
		return ""
	}
	return s.getenv(name)
}

// positive returns the stored integer, or def when it is missing or not
// above zero.
func (s *SettingsService) positive(key string, def int) int {
	if v := s.configStore.GetInt(key); v > 0 {
		return v
	}
	return def
}

func (s *SettingsService) float(key string, def float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetFloat64(key)
}

// duration accepts a Go duration string ("90m") or a count of seconds,
// either as a number or a numeric string.
func (s *SettingsService) duration(key string, def time.Duration) (time.Duration, error) {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return def, nil
	}
	str, isString := raw.(string)
	if !isString {
		if secs := s.configStore.GetInt(key); secs > 0 {
			return time.Duration(secs) * time.Second, nil
		}
		return def, nil
	}
	if str == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(str); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}
