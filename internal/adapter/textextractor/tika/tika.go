// Package tika turns stored resume references into plain text. It downloads
// the file behind the reference URL and runs it through an Apache Tika
// server (PUT /tika with Accept: text/plain). Plain-text payloads skip the
// Tika round trip entirely.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// maxDownloadBytes bounds how much of a remote file is read.
const maxDownloadBytes = 20 << 20

// Client implements domain.TextExtractor against a Tika server.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// ExtractURL downloads fileURL and returns its extracted plain text with
// whitespace collapsed to single spaces.
func (c *Client) ExtractURL(ctx context.Context, fileURL string) (string, error) {
	if fileURL == "" {
		return "", fmt.Errorf("%w: empty file url", domain.ErrInvalidArgument)
	}
	payload, err := c.download(ctx, fileURL)
	if err != nil {
		return "", err
	}

	mt := mimetype.Detect(payload)
	if mt.Is("text/plain") {
		return collapse(string(payload)), nil
	}

	text, err := c.extract(ctx, payload, mt.String())
	if err != nil {
		return "", err
	}
	return collapse(text), nil
}

func (c *Client) download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("op=extract.download: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("op=extract.download: %w: %v", domain.ErrUpstreamFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("op=extract.download: %w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("op=extract.download: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty file at %s", domain.ErrInvalidArgument, fileURL)
	}
	return payload, nil
}

func (c *Client) extract(ctx context.Context, payload []byte, contentType string) (string, error) {
	u := c.baseURL
	if u == "" {
		u = "http://localhost:9998"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u+"/tika", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("op=extract.tika: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("op=extract.tika: %w: %v", domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("op=extract.tika: %w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("op=extract.tika: %w", err)
	}
	return string(b), nil
}

// collapse strips control characters and squeezes runs of whitespace into
// single spaces.
func collapse(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(cleaned), " ")
}
