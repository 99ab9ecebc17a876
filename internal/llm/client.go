// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"quizzed/internal/config"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("llm: no api key configured")

const maxAttempts = 2

// CallError reports a failed completion so callers can fall back.
type CallError struct {
	Reason  string
	Status  int
	Wrapped error
}

func (e *CallError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("llm call failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("llm call failed: %s", e.Reason)
}

func (e *CallError) Unwrap() error {
	return e.Wrapped
}

// Options tune one completion.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Client calls /v1/chat/completions.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient builds a client whose transport emits client spans.
func NewClient(cfg config.AIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   cfg.Model,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
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

// Complete sends a system and user message and returns the first choice.
// Server errors and transport failures are retried once; 4xx responses are not.
func (c *Client) Complete(ctx context.Context, system, prompt string, opt Options) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   opt.MaxTokens,
		Temperature: opt.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := c.call(ctx, body)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var ce *CallError
		if errors.As(err, &ce) && ce.Status >= 400 && ce.Status < 500 {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) call(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &CallError{Reason: "build request", Wrapped: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &CallError{Reason: "request", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &CallError{Reason: fmt.Sprintf("status %d", resp.StatusCode), Status: resp.StatusCode}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &CallError{Reason: "decode response", Wrapped: err}
	}
	if len(out.Choices) == 0 {
		return "", &CallError{Reason: "no choices"}
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", &CallError{Reason: "empty content"}
	}
	return content, nil
}
