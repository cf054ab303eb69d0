// Package scraper collects job market postings from a SERP-style search API
// and fetches public company pages for prompt context.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// Client implements domain.JobSearcher against the SerpAPI google_jobs
// engine, and provides best-effort company page fetching.
type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

// New constructs a scraper client.
func New(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 20 * time.Second},
	}
}

type searchResponse struct {
	JobsResults []struct {
		Title       string `json:"title"`
		CompanyName string `json:"company_name"`
		Description string `json:"description"`
	} `json:"jobs_results"`
}

// SearchJobs returns up to limit postings for one skill query. Postings with
// an empty description are dropped.
func (c *Client) SearchJobs(ctx context.Context, skill string, limit int) ([]domain.JobPosting, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: SERP_API_KEY missing", domain.ErrUnavailable)
	}
	q := url.Values{}
	q.Set("engine", "google_jobs")
	q.Set("q", skill+" jobs")
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("op=scrape.search: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("op=scrape.search: %w: %v", domain.ErrUpstreamFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("op=scrape.search: %w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("op=scrape.search: decode: %w", err)
	}

	postings := make([]domain.JobPosting, 0, limit)
	for _, j := range out.JobsResults {
		if strings.TrimSpace(j.Description) == "" {
			continue
		}
		postings = append(postings, domain.JobPosting{
			Skill:       skill,
			Title:       j.Title,
			Company:     j.CompanyName,
			Description: j.Description,
		})
		if len(postings) >= limit {
			break
		}
	}
	return postings, nil
}

var tagRe = regexp.MustCompile(`(?s)<[^>]*>`)

// FetchCompanyInfo fetches a company page and returns its visible text,
// truncated. Any failure yields an empty string; company context is optional
// and must never block an analysis.
func (c *Client) FetchCompanyInfo(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		slog.Debug("company page request build failed", slog.Any("error", err))
		return ""
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		slog.Debug("company page fetch failed", slog.String("url", pageURL), slog.Any("error", err))
		return ""
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("company page non-2xx", slog.String("url", pageURL), slog.Int("status", resp.StatusCode))
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}
	stripped := tagRe.ReplaceAllString(string(body), " ")
	text := strings.Join(strings.Fields(stripped), " ")
	if len(text) > 2000 {
		text = text[:2000]
	}
	return text
}
