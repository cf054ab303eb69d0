package openaiembed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

func testCfg(baseURL string) config.Config {
	return config.Config{OpenAIAPIKey: "k", OpenAIBaseURL: baseURL, EmbeddingsModel: "test-embed"}
}

func TestNew_MissingKeyDisables(t *testing.T) {
	t.Parallel()
	assert.Nil(t, New(config.Config{}))
	assert.NotNil(t, New(config.Config{OpenAIAPIKey: "k"}))
}

func TestEmbed_OrdersByIndex(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		// Out-of-order data entries must land at their declared index.
		_, _ = w.Write([]byte(`{"data":[
			{"index":1,"embedding":[0.4,0.5]},
			{"index":0,"embedding":[0.1,0.2]}
		]}`))
	}))
	t.Cleanup(srv.Close)

	vectors, err := New(testCfg(srv.URL)).Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.4, 0.5}, vectors[1])
}

func TestEmbed_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	}))
	t.Cleanup(srv.Close)

	vectors, err := New(testCfg(srv.URL)).Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestEmbed_PermanentFailures(t *testing.T) {
	t.Parallel()

	t.Run("4xx is not retried", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		t.Cleanup(srv.Close)

		_, err := New(testCfg(srv.URL)).Embed(context.Background(), []string{"a"})
		require.Error(t, err)
		assert.ErrorContains(t, err, "status 400")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("count mismatch", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
		}))
		t.Cleanup(srv.Close)

		_, err := New(testCfg(srv.URL)).Embed(context.Background(), []string{"a", "b"})
		require.Error(t, err)
		assert.ErrorContains(t, err, "expected 2 embeddings")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte("not json"))
		}))
		t.Cleanup(srv.Close)

		_, err := New(testCfg(srv.URL)).Embed(context.Background(), []string{"a"})
		require.Error(t, err)
		assert.ErrorContains(t, err, "decode")
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestEmbed_NoTexts(t *testing.T) {
	t.Parallel()
	_, err := New(testCfg("http://unused")).Embed(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
