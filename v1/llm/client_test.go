package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextra/ragcore/v1/faults"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()

	client, err := NewClient(&Config{
		Endpoint:     endpoint,
		ApiKey:       "test-key",
		Model:        "test-model",
		MaxTokens:    256,
		HTTPTimeoutS: 5,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	var gotMaxTokens int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model     string    `json:"model"`
			Messages  []Message `json:"messages"`
			MaxTokens int       `json:"max_tokens"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotMaxTokens = req.MaxTokens

		_ = json.NewEncoder(w).Encode(completionResponse("hello there"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	reply, err := client.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
	}, 128)
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
	assert.Equal(t, 128, gotMaxTokens)
}

func TestGenerate_DefaultMaxTokens(t *testing.T) {
	var gotMaxTokens int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxTokens int `json:"max_tokens"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotMaxTokens = req.MaxTokens
		_ = json.NewEncoder(w).Encode(completionResponse("ok"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, 256, gotMaxTokens)
}

func TestGenerate_RetriesTransientFailureOnce(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "temporarily overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(completionResponse("second try"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	reply, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, "second try", reply)
	assert.Equal(t, int64(2), requests.Load())
}

func TestGenerate_TransientFailureTwiceFails(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	require.Error(t, err)
	assert.True(t, faults.IsBackendUnavailable(err))
	assert.Equal(t, int64(2), requests.Load(), "exactly one retry expected")
}

func TestGenerate_PermanentFailureNotRetried(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	require.Error(t, err)
	assert.False(t, faults.IsRetryable(err))
	assert.Equal(t, int64(1), requests.Load())
}

func TestGenerate_RateLimitIsTransient(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(completionResponse("after limit"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	reply, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, "after limit", reply)
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{})
	require.Error(t, err)
}
