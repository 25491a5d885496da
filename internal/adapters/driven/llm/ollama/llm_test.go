package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestNewOptions(t *testing.T) {
	assert.Nil(t, newOptions(0, 0, nil))
	assert.Equal(t, &options{NumPredict: 10}, newOptions(10, 0, nil))
	assert.Equal(t, &options{Stop: []string{"x"}}, newOptions(0, 0, []string{"x"}))
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "describe plan A", req.Prompt)
		assert.Nil(t, req.Options)

		w.Write([]byte(`{"response":"Plan A is compact.\n","done":true}`))
	}))
	defer server.Close()

	out, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Generate(context.Background(), "describe plan A", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Plan A is compact.", out)
}

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		require.NotNil(t, req.Options)
		assert.InDelta(t, 0.2, req.Options.Temperature, 1e-9)

		w.Write([]byte(`{"message":{"role":"assistant","content":"Sure."},"done":true}`))
	}))
	defer server.Close()

	out, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.ChatRoleSystem, Content: "proposal"},
		{Role: driven.ChatRoleUser, Content: "ok?"},
	}, driven.ChatOptions{Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Sure.", out)
}

func TestChat_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorContains(t, err, "send request")
}
