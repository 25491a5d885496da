package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)

	svc, err := NewLLMService(LLMConfig{APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}

func TestChat_PassesSystemMessage(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "proposal text", req.Messages[0].Content)
		assert.Equal(t, "assistant", req.Messages[2].Role)

		w.Write([]byte(`{"choices":[{"message":{"content":"  Plan B has a larger garden.\n"}}]}`))
	})

	reply, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.ChatRoleSystem, Content: "proposal text"},
		{Role: driven.ChatRoleUser, Content: "which has a garden?"},
		{Role: driven.ChatRoleAssistant, Content: "Plan B."},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Plan B has a larger garden.", reply)
}

func TestGenerate_SendsOptions(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 200, req.MaxTokens)
		assert.Equal(t, []string{"END"}, req.Stop)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	out, err := svc.Generate(context.Background(), "hi", driven.GenerateOptions{MaxTokens: 200, StopWords: []string{"END"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestChat_NoChoices(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorContains(t, err, "no choices")
}

func TestChat_ServerError(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := svc.Generate(context.Background(), "hi", driven.GenerateOptions{})
	var remote *driven.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.True(t, remote.Retryable())
}
