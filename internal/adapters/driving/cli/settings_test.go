package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	for in, want := range map[string]string{
		"":                        "****",
		"abc123":                  "****",
		"12345678":                "****",
		"sk-1234567890abcdef":     "sk-1...cdef",
		"sk-ant-api03-xyzXYZ9876": "sk-a...9876",
	} {
		assert.Equal(t, want, maskAPIKey(in), "key %q", in)
	}
}

func TestParseChoice(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 2},
		{"   ", 2},
		{"1", 1},
		{" 4 ", 4},
		{"5", 5},
		{"0", 2},
		{"6", 2},
		{"-3", 2},
		{"two", 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, parseChoice(c.in, 5, 2), "input %q", c.in)
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://plans:****@db:5432/houseplan",
		maskDSN("postgres://plans:s3cret@db:5432/houseplan"))
	assert.Equal(t, "postgres://db/houseplan", maskDSN("postgres://db/houseplan"))
	assert.Equal(t, "host=db user=plans", maskDSN("host=db user=plans"))
}

func TestSettingsShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderAnthropic,
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "sk-ant-1234567890",
	}
	ts.settings.settings.Storage = domain.StorageSettings{
		Backend: domain.StoragePostgres,
		DSN:     "postgres://plans:s3cret@db/houseplan",
	}
	ts.settings.validateErr = domain.ErrInvalidInput

	out, _, err := execute("", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Config file: /home/test/.houseplan/config.toml")
	assert.Contains(t, out, "Provider: Anthropic (cloud)")
	assert.Contains(t, out, "API Key: sk-a...7890")
	assert.Contains(t, out, "Backend: PostgreSQL + pgvector")
	assert.Contains(t, out, "DSN: postgres://plans:****@db/houseplan")
	assert.Contains(t, out, "Max segment length: 6000 characters")
	assert.Contains(t, out, "Reference plans: 3")
	assert.Contains(t, out, "Plan link lifetime: 1h0m0s")
	assert.Contains(t, out, "Run 'houseplan settings wizard'")
	assert.NotContains(t, out, "s3cret")
}

func TestSettingsEmbedding(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute("2\n\nsk-test-key\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, []string{"openai", "text-embedding-3-small", "sk-test-key"}, ts.settings.embedding)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsLLM_ValidationFails(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.pingErr = domain.ErrLLMUnavailable

	_, _, err := execute("1\nllama3.1\n", "settings", "llm")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Equal(t, []string{"ollama", "llama3.1", ""}, ts.settings.llm)
}

func TestSettingsStorage(t *testing.T) {
	t.Run("postgres needs a dsn", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		_, _, err := execute("2\n\n", "settings", "storage")

		assert.Error(t, err)
		assert.Empty(t, ts.settings.storage)
	})

	t.Run("memory", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		out, _, err := execute("3\n", "settings", "storage")

		require.NoError(t, err)
		assert.Equal(t, []string{"memory", ""}, ts.settings.storage)
		assert.Contains(t, out, "Storage configured: In-memory (lost on exit)")
	})
}

func TestSettingsWizard(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	input := "1\n\n" + // embedding: ollama, default model
		"3\n\nsk-ant-key-123456\n" + // llm: anthropic
		"2\npostgres://u:p@db/plans\n" // storage: postgres

	out, _, err := execute(input, "settings", "wizard")

	require.NoError(t, err)
	assert.Equal(t, []string{"ollama", "nomic-embed-text", ""}, ts.settings.embedding)
	assert.Equal(t, []string{"anthropic", "claude-3-5-sonnet-latest", "sk-ant-key-123456"}, ts.settings.llm)
	assert.Equal(t, []string{"postgres", "postgres://u:p@db/plans"}, ts.settings.storage)
	assert.Contains(t, out, "All settings are valid and saved.")
}

func TestSettings_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	_, _, err := execute("", "settings")

	assert.ErrorIs(t, err, errNoSettingsService)
	assert.EqualError(t, err, "settings service not configured")
}

func TestSettingsShow_SQLiteDefaults(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute("", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Data dir: (default)")
	assert.Contains(t, out, "Configuration is valid.")
	assert.NotContains(t, out, "DSN:")
}
