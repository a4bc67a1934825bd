// internal/adapters/firecrawl/client.go
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/observability"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

// Client wraps the Firecrawl scrape and search endpoints. Calls are
// rate-limited client-side but never retried; a provider failure is the
// caller's signal to fall back or give up.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, domain.ErrMissingCredentials
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 60 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int      `json:"waitFor,omitempty"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

type searchRequest struct {
	Query         string `json:"query"`
	Limit         int    `json:"limit"`
	ScrapeOptions struct {
		Formats []string `json:"formats"`
	} `json:"scrapeOptions"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Markdown    string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Scrape fetches the full page as markdown. We ask for the whole page, not
// just the main content region, since reviews often render outside it, and
// wait for client-side rendering to settle.
func (c *Client) Scrape(ctx context.Context, url string) (string, error) {
	req := scrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: false,
		WaitFor:         5000,
	}
	var out scrapeResponse
	if err := c.post(ctx, "/v1/scrape", "scrape", req, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", fmt.Errorf("firecrawl scrape failed: %s", out.Error)
	}
	return out.Data.Markdown, nil
}

// Search runs a web search and concatenates the scraped markdown (or the
// plain description when no markdown came back) of the top results.
func (c *Client) Search(ctx context.Context, query string, limit int) (string, error) {
	req := searchRequest{Query: query, Limit: limit}
	req.ScrapeOptions.Formats = []string{"markdown"}

	var out searchResponse
	if err := c.post(ctx, "/v1/search", "search", req, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", fmt.Errorf("firecrawl search failed: %s", out.Error)
	}
	var sb strings.Builder
	for _, d := range out.Data {
		if d.Markdown != "" {
			sb.WriteString(d.Markdown)
		} else if d.Description != "" {
			sb.WriteString(d.Description)
		}
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func (c *Client) post(ctx context.Context, path, endpoint string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("firecrawl %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("firecrawl", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("firecrawl %s status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
