package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// anthropicClient is the concrete Narrator backed by the Anthropic Messages API.
type anthropicClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// Option customises an HTTP-backed client.
type Option func(*httpOptions)

type httpOptions struct {
	endpoint   string
	httpClient *http.Client
}

// WithEndpoint overrides the provider URL. Used by tests and proxies.
func WithEndpoint(url string) Option {
	return func(o *httpOptions) { o.endpoint = url }
}

// WithHTTPClient overrides the default 90s-timeout HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *httpOptions) { o.httpClient = c }
}

func applyOptions(endpoint string, opts []Option) httpOptions {
	o := httpOptions{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewAnthropicClient returns a Narrator that calls the Anthropic API.
//   - apiKey: your ANTHROPIC_API_KEY
//   - model:  e.g. "claude-sonnet-4-5"
func NewAnthropicClient(apiKey, model string, opts ...Option) Narrator {
	o := applyOptions(anthropicEndpoint, opts)
	return &anthropicClient{
		apiKey:     apiKey,
		model:      model,
		endpoint:   o.endpoint,
		httpClient: o.httpClient,
	}
}

// ─── ANTHROPIC API SHAPES ─────────────────────────────────────────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ─── IMPLEMENTATION ───────────────────────────────────────────────────────────

// GenerateNarrative calls the Anthropic API and returns the executive summary
// paragraph.
func (c *anthropicClient) GenerateNarrative(ctx context.Context, req NarrativeRequest) (NarrativeResult, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxOutputTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildPrompt(req)},
		},
	}

	parsed, err := c.call(ctx, reqBody)
	if err != nil {
		return NarrativeResult{}, err
	}

	var raw string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			raw = block.Text
			break
		}
	}
	text, err := cleanNarrative(raw)
	if err != nil {
		return NarrativeResult{}, err
	}

	return NarrativeResult{
		Text: text,
		Usage: Usage{
			Provider:     "anthropic",
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		},
	}, nil
}

// call sends one request to the Anthropic Messages API.
func (c *anthropicClient) call(ctx context.Context, reqBody anthropicRequest) (anthropicResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return anthropicResponse{}, fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return anthropicResponse{}, fmt.Errorf("ai: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return anthropicResponse{}, fmt.Errorf("ai: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB cap
	if err != nil {
		return anthropicResponse{}, fmt.Errorf("ai: read response body: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return anthropicResponse{}, fmt.Errorf("ai: unmarshal response: %w", err)
	}

	if parsed.Error != nil {
		return anthropicResponse{}, fmt.Errorf("ai: API error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return anthropicResponse{}, fmt.Errorf("ai: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	return parsed, nil
}
