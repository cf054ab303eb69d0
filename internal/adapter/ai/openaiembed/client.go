// Package openaiembed implements the embedding port on an OpenAI-compatible
// embeddings API.
package openaiembed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/observability"
)

// Client embeds texts in batches. All vectors produced by one Client come
// from the same configured model, so they share one vector space.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs an embeddings client, or returns nil when no API key is
// configured. Callers treat a nil Embedder as "model unavailable" and
// degrade to their fallback behavior instead of aborting the process.
func New(cfg config.Config) *Client {
	if cfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY missing; embeddings disabled, semantic scoring and retrieval degraded")
		return nil
	}
	return &Client{cfg: cfg, hc: &http.Client{Timeout: 30 * time.Second}}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order. Transient
// failures (429, 5xx) are retried with exponential backoff.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts", domain.ErrInvalidArgument)
	}
	body, err := json.Marshal(embedRequest{Model: c.cfg.EmbeddingsModel, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("op=embed.marshal: %w", err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	expo.MaxInterval = 5 * time.Second
	expo.MaxElapsedTime = 30 * time.Second

	var vectors [][]float32
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			return fmt.Errorf("embeddings status %d: %s", resp.StatusCode, string(snippet))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			return backoff.Permanent(fmt.Errorf("embeddings status %d: %s", resp.StatusCode, string(snippet)))
		}

		var out embedResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		if len(out.Data) != len(texts) {
			return backoff.Permanent(fmt.Errorf("expected %d embeddings, got %d", len(texts), len(out.Data)))
		}
		vectors = make([][]float32, len(texts))
		for _, d := range out.Data {
			if d.Index < 0 || d.Index >= len(vectors) {
				return backoff.Permanent(fmt.Errorf("embedding index %d out of range", d.Index))
			}
			vectors[d.Index] = d.Embedding
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(expo, ctx)); err != nil {
		observability.AIRequestsTotal.WithLabelValues("openai", "embed", "error").Inc()
		return nil, fmt.Errorf("op=embed: %w", err)
	}
	observability.AIRequestsTotal.WithLabelValues("openai", "embed", "ok").Inc()
	return vectors, nil
}
