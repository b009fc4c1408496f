// Package provider implements the Gemini generateContent client that turns a
// cleaned transcript into a raw JSON summary payload.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/concall/internal/prompts"
	"github.com/JaimeStill/concall/pkg/formatting"
)

const maxErrorBody = 1 << 20

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content content `json:"content"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client from a finalized Config.
func New(cfg *Config, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:    *cfg,
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "provider"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Endpoint returns the generateContent URL for the configured model.
func (c *Client) Endpoint() string {
	base := strings.TrimSuffix(c.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/models/%s:generateContent", base, url.PathEscape(c.cfg.Model))
}

// Summarize sends the composed prompt for transcript and returns the parsed
// JSON payload produced by the model. The payload is not validated.
// Failed calls are not retried.
func (c *Client) Summarize(ctx context.Context, transcript string) (any, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	text, err := c.generate(ctx, prompts.Compose(transcript))
	if err != nil {
		return nil, err
	}

	payload, err := formatting.Parse[any](text)
	if err != nil {
		c.logger.Error("model output parse failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return payload, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	c.logger.Info("provider request", "model", c.cfg.Model)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("provider request failed", "endpoint", endpoint, "error", err)
		return "", &RequestError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", &RequestError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode/100 != 2 {
		c.logger.Error("provider request failed",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"body", string(raw),
		)
		return "", &RequestError{StatusCode: resp.StatusCode, Body: decodeBody(raw)}
	}

	c.logger.Info("provider success",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return extractText(raw, c.logger)
}

func extractText(raw []byte, logger *slog.Logger) (string, error) {
	var envelope generateResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.Error("provider response invalid", "reason", "malformed_envelope", "error", err)
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(envelope.Candidates) == 0 {
		logger.Error("provider response invalid", "reason", "missing_candidates", "body", string(raw))
		return "", fmt.Errorf("%w: missing candidates", ErrInvalidResponse)
	}

	parts := envelope.Candidates[0].Content.Parts
	if len(parts) == 0 || strings.TrimSpace(parts[0].Text) == "" {
		logger.Error("provider response invalid", "reason", "missing_text", "body", string(raw))
		return "", fmt.Errorf("%w: missing candidate text", ErrInvalidResponse)
	}

	return parts[0].Text, nil
}

func decodeBody(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}
