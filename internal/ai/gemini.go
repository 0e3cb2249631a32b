package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// geminiClient is the concrete Narrator backed by the Gemini API through the
// official genai SDK.
type geminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient returns a Narrator that calls the Gemini API.
//   - apiKey: your GEMINI_API_KEY
//   - model:  e.g. "gemini-2.5-flash"
//
// WithEndpoint sets the API base URL rather than a full request URL.
func NewGeminiClient(ctx context.Context, apiKey, model string, opts ...Option) (Narrator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	o := applyOptions("", opts)
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if o.endpoint != "" {
		cc.HTTPOptions.BaseURL = o.endpoint
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &geminiClient{client: client, model: model}, nil
}

// GenerateNarrative calls Gemini and returns the executive summary paragraph.
func (c *geminiClient) GenerateNarrative(ctx context.Context, req NarrativeRequest) (NarrativeResult, error) {
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(buildPrompt(req)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			MaxOutputTokens:   maxOutputTokens,
		},
	)
	if err != nil {
		return NarrativeResult{}, fmt.Errorf("gemini: generate content: %w", err)
	}

	text, err := cleanNarrative(resp.Text())
	if err != nil {
		return NarrativeResult{}, err
	}

	usage := Usage{Provider: "gemini"}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return NarrativeResult{Text: text, Usage: usage}, nil
}
