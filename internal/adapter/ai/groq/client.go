// Package groq implements the narrative port on the Groq chat completions
// API (OpenAI-compatible).
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/observability"
)

// Client calls the Groq chat completions endpoint. The narrative call is
// fail-fast: one attempt, no retries, any failure reported through the
// tagged NarrativeResult so callers swap to the deterministic path.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a Groq client with a bounded request timeout.
func New(cfg config.Config) *Client {
	return &Client{cfg: cfg, hc: &http.Client{Timeout: 60 * time.Second}}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Narrate requests a short structured narrative. It never returns an error;
// the outcome is tagged in the result.
func (c *Client) Narrate(ctx context.Context, systemPrompt, userPrompt string) domain.NarrativeResult {
	if c.cfg.GroqAPIKey == "" {
		return failure("GROQ_API_KEY missing")
	}
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.GroqModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   700,
	})
	if err != nil {
		return failure(fmt.Sprintf("marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GroqBaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return failure(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.GroqAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues("groq", "chat", "error").Inc()
		slog.Warn("groq chat request failed", slog.Any("error", err))
		return failure(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.AIRequestsTotal.WithLabelValues("groq", "chat", "error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("groq chat non-2xx", slog.Int("status", resp.StatusCode), slog.String("body", string(snippet)))
		return failure(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		observability.AIRequestsTotal.WithLabelValues("groq", "chat", "error").Inc()
		return failure(fmt.Sprintf("decode response: %v", err))
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		observability.AIRequestsTotal.WithLabelValues("groq", "chat", "error").Inc()
		return failure("empty completion")
	}
	observability.AIRequestsTotal.WithLabelValues("groq", "chat", "ok").Inc()
	return domain.NarrativeResult{OK: true, Text: out.Choices[0].Message.Content}
}

func failure(reason string) domain.NarrativeResult {
	return domain.NarrativeResult{Reason: reason}
}
