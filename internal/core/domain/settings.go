package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider names a service that embeds text or generates it.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

var providerLabels = map[AIProvider]string{
	AIProviderOllama:    "Ollama (local)",
	AIProviderOpenAI:    "OpenAI (cloud)",
	AIProviderAnthropic: "Anthropic (cloud)",
}

func (p AIProvider) IsValid() bool {
	_, ok := providerLabels[p]
	return ok
}

// RequiresAPIKey is true for the hosted providers.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && !p.IsLocal()
}

// IsLocal is true when the provider runs on this machine and is reached
// through a base URL.
func (p AIProvider) IsLocal() bool { return p == AIProviderOllama }

func (p AIProvider) String() string { return string(p) }

// Description is the label shown in menus and settings output.
func (p AIProvider) Description() string {
	if label, ok := providerLabels[p]; ok {
		return label
	}
	return unknownDescription
}

// ProviderSettings selects a provider and model for one AI role.
type ProviderSettings struct {
	Provider AIProvider
	Model    string

	// BaseURL is only read for local providers.
	BaseURL string

	// APIKey is only read for hosted providers.
	APIKey string
}

// IsConfigured reports whether the provider is known and has the key it needs.
func (s ProviderSettings) IsConfigured() bool {
	return s.Provider.IsValid() && (!s.Provider.RequiresAPIKey() || s.APIKey != "")
}

type (
	// EmbeddingSettings configures the provider that embeds segments and requests.
	EmbeddingSettings = ProviderSettings

	// LLMSettings configures the provider that drafts proposals and chat replies.
	LLMSettings = ProviderSettings
)

// RateLimitSettings throttles calls to hosted providers. A zero
// RequestsPerSecond turns throttling off.
type RateLimitSettings struct {
	RequestsPerSecond float64
	Burst             int
}

// StorageBackend names the datastore that holds segments and requests.
type StorageBackend string

const (
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
	StorageMemory   StorageBackend = "memory"
)

var backendLabels = map[StorageBackend]string{
	StorageSQLite:   "SQLite (local file)",
	StoragePostgres: "PostgreSQL + pgvector",
	StorageMemory:   "In-memory (lost on exit)",
}

func (b StorageBackend) IsValid() bool {
	_, ok := backendLabels[b]
	return ok
}

func (b StorageBackend) String() string { return string(b) }

func (b StorageBackend) Description() string {
	if label, ok := backendLabels[b]; ok {
		return label
	}
	return unknownDescription
}

type StorageSettings struct {
	Backend StorageBackend

	// DSN is read by the postgres backend only.
	DSN string

	// DataDir holds the SQLite database. Empty means ~/.houseplan/data.
	DataDir string
}

// BlobSettings locates uploaded originals.
type BlobSettings struct {
	// Dir defaults to ~/.houseplan/blobs.
	Dir string

	// SigningKey signs plan links. Empty means a random key per process,
	// so links die with the process.
	SigningKey string
}

type IngestSettings struct {
	// MaxChars caps the length of one segment.
	MaxChars int

	// MaxAttempts caps embedding calls per segment before ingestion fails.
	MaxAttempts int
}

type RetrievalSettings struct {
	// TopN is how many nearest plans back a proposal.
	TopN int

	// SignedURLTTL is how long an opened plan link stays valid.
	SignedURLTTL time.Duration
}

// AppSettings is the whole persisted configuration.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	RateLimit RateLimitSettings
	Storage   StorageSettings
	Blob      BlobSettings
	Ingest    IngestSettings
	Retrieval RetrievalSettings
}

const (
	DefaultMaxChars     = 6000
	DefaultMaxAttempts  = 3
	DefaultTopN         = 3
	DefaultSignedURLTTL = time.Hour
)

// DefaultAppSettings leaves both AI providers unset. They are chosen in
// the settings wizard.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		RateLimit: RateLimitSettings{RequestsPerSecond: 5, Burst: 10},
		Storage:   StorageSettings{Backend: StorageSQLite},
		Ingest:    IngestSettings{MaxChars: DefaultMaxChars, MaxAttempts: DefaultMaxAttempts},
		Retrieval: RetrievalSettings{TopN: DefaultTopN, SignedURLTTL: DefaultSignedURLTTL},
	}
}

// AllEmbeddingProviders lists providers with an embeddings API, in menu order.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders lists providers with a generation API, in menu order.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
}

// AllStorageBackends lists backends in menu order, default first.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StoragePostgres, StorageMemory}
}

func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions maps known embedding models to their vector size.
// The postgres backend needs it to declare the vector column.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
