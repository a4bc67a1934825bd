// internal/adapters/openai/client.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/observability"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

const systemPrompt = `You extract guest reviews from raw web page text for a vacation rental.
Respond with ONLY a JSON array of review objects, no prose. Each object may have:
reviewer_name (string, required), reviewer_country, review_title, positive_text,
negative_text, score (number, 1-10), stay_date, room_type, traveler_type.
If no reviews are present, respond with [].`

// maxInputChars bounds the raw text sent to the model to respect provider
// token limits.
const maxInputChars = 15000

// Client calls an OpenAI-compatible chat-completions endpoint to turn raw
// scraped text into structured review records.
type Client struct {
	base  string
	hc    *http.Client
	key   string
	model string
	rl    *rate.Limiter
}

func New(base, key, model string) (*Client, error) {
	if key == "" {
		return nil, domain.ErrMissingCredentials
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		hc:    &http.Client{Timeout: 90 * time.Second},
		key:   key,
		model: model,
		rl:    rate.NewLimiter(rate.Limit(1), 2),
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
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

// ExtractReviews sends the (truncated) raw text to the model and parses the
// JSON array out of its reply. Records missing reviewer_name are dropped.
func (c *Client) ExtractReviews(ctx context.Context, raw string) ([]domain.Review, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	if len(raw) > maxInputChars {
		raw = truncateToRuneBoundary(raw, maxInputChars)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: raw},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("openai", "chat_completions", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}
	return ParseReviewArray(cr.Choices[0].Message.Content)
}

// ParseReviewArray locates the first balanced top-level JSON array in text
// and unmarshals it. Models sometimes wrap the array in prose or code
// fences; scanning for the array tolerates both.
func ParseReviewArray(text string) ([]domain.Review, error) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return nil, fmt.Errorf("no JSON array in completion reply")
	}
	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				var out []domain.Review
				if err := json.Unmarshal([]byte(text[start:i+1]), &out); err != nil {
					return nil, fmt.Errorf("parse review array: %w", err)
				}
				kept := out[:0]
				for _, r := range out {
					if strings.TrimSpace(r.ReviewerName) != "" {
						kept = append(kept, r)
					}
				}
				return kept, nil
			}
		}
	}
	return nil, fmt.Errorf("unterminated JSON array in completion reply")
}

// truncateToRuneBoundary cuts s to at most n bytes, backing off so a
// multi-byte rune is never split at the cut.
func truncateToRuneBoundary(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
