// Package gemini calls the Gemini generateContent API to justify a selection
// of courses in a sentence each.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"cetracker/internal/recommend"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"

	maxResponseBytes = 1 << 20
	maxLoggedBody    = 512
)

// Config configures a Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration

	// BreakerFailures consecutive failures open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration

	HTTPClient *http.Client
}

// Client is a recommend.Enricher backed by Gemini. Each Enrich call issues at
// most one request; there are no retries.
type Client struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]string]
}

// NewClient creates a Gemini client, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(cfg.BaseURL, "/"), cfg.Model),
		timeout:  cfg.Timeout,
		http:     cfg.HTTPClient,
		breaker:  newBreaker(cfg.BreakerFailures, cfg.BreakerCooldown),
	}
}

func newBreaker(failures uint32, cooldown time.Duration) *gobreaker.CircuitBreaker[[]string] {
	return gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A caller hanging up says nothing about the remote's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// BreakerState reports the circuit breaker state for diagnostics.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Enrich asks the model for one short reason per course. All failures are
// returned as *recommend.EnrichmentError.
func (c *Client) Enrich(ctx context.Context, courses []recommend.Course, interests string) ([]string, error) {
	reasons, err := c.breaker.Execute(func() ([]string, error) {
		return c.generate(ctx, courses, interests)
	})
	if err == nil {
		return reasons, nil
	}
	slog.Debug("gemini call failed", "breaker", c.BreakerState(), "error", err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &recommend.EnrichmentError{Kind: recommend.TransportFailure, Err: err}
	}
	return nil, err
}

func (c *Client) generate(ctx context.Context, courses []recommend.Course, interests string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(courses, interests)}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 500,
		},
	})
	if err != nil {
		return nil, &recommend.EnrichmentError{Kind: recommend.TransportFailure, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &recommend.EnrichmentError{Kind: recommend.TransportFailure, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &recommend.EnrichmentError{Kind: recommend.TransportFailure, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &recommend.EnrichmentError{Kind: recommend.TransportFailure, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &recommend.EnrichmentError{
			Kind:       recommend.NonSuccessStatus,
			StatusCode: resp.StatusCode,
			Body:       snippet(body, maxLoggedBody),
		}
	}

	return parseReasons(body, len(courses))
}

// buildPrompt lists the selected titles and the sanitized interests.
func buildPrompt(courses []recommend.Course, interests string) string {
	var list strings.Builder
	for i, c := range courses {
		if i > 0 {
			list.WriteByte('\n')
		}
		fmt.Fprintf(&list, "%d. %s", i+1, c.Title)
	}

	placeholders := make([]string, len(courses))
	for i := range courses {
		placeholders[i] = fmt.Sprintf("%q", fmt.Sprintf("reason%d", i+1))
	}

	return fmt.Sprintf(`User interests: "%s"
Courses:
%s

Write a brief ai_reason (10-15 words) for each course explaining why it matches their interests.
Return JSON: [%s]`, interests, list.String(), strings.Join(placeholders, ","))
}

// parseReasons extracts the model text and decodes it as a JSON array of
// exactly want non-blank strings. Markdown code fences are tolerated.
func parseReasons(body []byte, want int) ([]string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed(fmt.Errorf("decode response: %w", err))
	}

	text, ok := resp.text()
	if !ok {
		return nil, malformed(errors.New("response has no candidate text"))
	}

	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var reasons []string
	if err := json.Unmarshal([]byte(text), &reasons); err != nil {
		return nil, malformed(fmt.Errorf("decode reasons: %w", err))
	}
	if len(reasons) != want {
		return nil, malformed(fmt.Errorf("got %d reasons, want %d", len(reasons), want))
	}
	for i, r := range reasons {
		r = strings.TrimSpace(r)
		if r == "" {
			return nil, malformed(fmt.Errorf("reason %d is blank", i+1))
		}
		reasons[i] = r
	}

	return reasons, nil
}

func malformed(err error) error {
	return &recommend.EnrichmentError{Kind: recommend.MalformedResponse, Err: err}
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
