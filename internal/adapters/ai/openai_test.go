package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

func TestOpenAIClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "chatcmpl-1",
			"model": "gpt-4.1",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": `{"direction":"long"}`}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", "gpt-4.1", 5*time.Second, nil)

	resp, err := client.Generate(context.Background(), Request{
		System: "you are a trading analyst",
		User:   "assess NVDA",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"direction":"long"}`, resp.Content)
	assert.Equal(t, 150, resp.Usage.TotalTokens)
}

func TestOpenAIClient_Generate_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", "gpt-4.1", 5*time.Second, nil)

	_, err := client.Generate(context.Background(), Request{User: "assess NVDA"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCapabilityUnavailable))
	assert.Contains(t, err.Error(), "overloaded")
}

func TestOpenAIClient_Generate_QuotaExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", "gpt-4.1", 5*time.Second, nil)

	_, err := client.Generate(context.Background(), Request{User: "assess NVDA"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCapabilityUnavailable))
}

func TestOpenAIClient_Generate_NoAPIKey(t *testing.T) {
	client := NewOpenAIClient("", "", "gpt-4.1", 5*time.Second, nil)

	_, err := client.Generate(context.Background(), Request{User: "assess NVDA"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestOpenAIClient_Generate_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Shut down before use

	client := NewOpenAIClient(server.URL, "test-key", "gpt-4.1", time.Second, nil)

	_, err := client.Generate(context.Background(), Request{User: "assess NVDA"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCapabilityUnavailable))
}
