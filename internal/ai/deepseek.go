package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const deepseekEndpoint = "https://api.deepseek.com/v1/chat/completions"

// deepseekClient is the concrete Narrator backed by the DeepSeek API.
// DeepSeek exposes an OpenAI-compatible /v1/chat/completions endpoint, so the
// request/response shapes are standard OpenAI chat format, not Anthropic's.
type deepseekClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewDeepSeekClient returns a Narrator that calls the DeepSeek API.
//   - apiKey: your DEEPSEEK_API_KEY
//   - model:  e.g. "deepseek-chat"
func NewDeepSeekClient(apiKey, model string, opts ...Option) Narrator {
	o := applyOptions(deepseekEndpoint, opts)
	return &deepseekClient{
		apiKey:     apiKey,
		model:      model,
		endpoint:   o.endpoint,
		httpClient: o.httpClient,
	}
}

// ─── OPENAI-COMPATIBLE API SHAPES ────────────────────────────────────────────

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ─── IMPLEMENTATION ───────────────────────────────────────────────────────────

// GenerateNarrative calls the DeepSeek API and returns the executive summary
// paragraph.
func (c *deepseekClient) GenerateNarrative(ctx context.Context, req NarrativeRequest) (NarrativeResult, error) {
	reqBody := openAIRequest{
		Model:     c.model,
		MaxTokens: maxOutputTokens,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
	}

	parsed, err := c.call(ctx, reqBody)
	if err != nil {
		return NarrativeResult{}, err
	}

	if len(parsed.Choices) == 0 {
		return NarrativeResult{}, fmt.Errorf("deepseek: no choices in response")
	}
	text, err := cleanNarrative(parsed.Choices[0].Message.Content)
	if err != nil {
		return NarrativeResult{}, err
	}

	return NarrativeResult{
		Text: text,
		Usage: Usage{
			Provider:     "deepseek",
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

// call sends one request to the DeepSeek chat completions endpoint.
func (c *deepseekClient) call(ctx context.Context, reqBody openAIRequest) (openAIResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return openAIResponse{}, fmt.Errorf("deepseek: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return openAIResponse{}, fmt.Errorf("deepseek: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return openAIResponse{}, fmt.Errorf("deepseek: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return openAIResponse{}, fmt.Errorf("deepseek: read response: %w", err)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return openAIResponse{}, fmt.Errorf("deepseek: unmarshal response: %w", err)
	}

	if parsed.Error != nil {
		return openAIResponse{}, fmt.Errorf("deepseek: API error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return openAIResponse{}, fmt.Errorf("deepseek: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	return parsed, nil
}
