package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/config"
)

func testCfg(baseURL string) config.Config {
	return config.Config{GroqAPIKey: "k", GroqBaseURL: baseURL, GroqModel: "test-model"}
}

func TestNarrate_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"1. Solid skill coverage."}}]}`))
	}))
	t.Cleanup(srv.Close)

	res := New(testCfg(srv.URL)).Narrate(context.Background(), "sys", "user")
	assert.True(t, res.OK)
	assert.Equal(t, "1. Solid skill coverage.", res.Text)
}

func TestNarrate_MissingKey(t *testing.T) {
	t.Parallel()
	res := New(config.Config{GroqBaseURL: "http://unused"}).Narrate(context.Background(), "sys", "user")
	assert.False(t, res.OK)
	assert.Equal(t, "GROQ_API_KEY missing", res.Reason)
}

func TestNarrate_FailureBranches(t *testing.T) {
	t.Parallel()

	t.Run("non-2xx is a single attempt", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		res := New(testCfg(srv.URL)).Narrate(context.Background(), "sys", "user")
		assert.False(t, res.OK)
		assert.Contains(t, res.Reason, "status 429")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		t.Cleanup(srv.Close)

		res := New(testCfg(srv.URL)).Narrate(context.Background(), "sys", "user")
		assert.False(t, res.OK)
		assert.Contains(t, res.Reason, "decode response")
	})

	t.Run("empty completion", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		t.Cleanup(srv.Close)

		res := New(testCfg(srv.URL)).Narrate(context.Background(), "sys", "user")
		assert.False(t, res.OK)
		assert.Equal(t, "empty completion", res.Reason)
	})

	t.Run("unreachable host", func(t *testing.T) {
		t.Parallel()
		res := New(testCfg("http://127.0.0.1:1")).Narrate(context.Background(), "sys", "user")
		assert.False(t, res.OK)
		assert.NotEmpty(t, res.Reason)
	})
}
