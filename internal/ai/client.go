// Package ai defines the narrow interface used to generate the executive
// narrative paragraph and provides Anthropic, DeepSeek and Gemini backed
// implementations plus a provider failover chain.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrEmptyNarrative is returned when a provider answers without usable text.
var ErrEmptyNarrative = errors.New("ai: response contained no narrative text")

// Dimension is one scored area passed to the model.
type Dimension struct {
	Name       string
	Score      float64
	Strengths  []string
	Weaknesses []string
}

// NarrativeRequest is everything the model sees. Nothing else about the
// business leaves the process.
type NarrativeRequest struct {
	CompanyName  string
	Industry     string
	OverallScore float64
	Dimensions   []Dimension
}

// Usage is token accounting for one successful call. It is surfaced for cost
// tracking and never rendered.
type Usage struct {
	Provider     string `json:"provider"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// NarrativeResult is the output of a successful GenerateNarrative call.
type NarrativeResult struct {
	// Text is a plain-text executive summary paragraph. Never empty on success.
	Text  string
	Usage Usage
}

// Narrator is the interface the report assembler uses to generate the
// executive narrative. Tests inject a stub that returns canned responses.
type Narrator interface {
	// GenerateNarrative returns a non-empty paragraph or an error. A timeout
	// is the caller's responsibility via ctx.
	//
	// Implementations must be safe to call concurrently.
	GenerateNarrative(ctx context.Context, req NarrativeRequest) (NarrativeResult, error)
}

// ─── PROMPT ───────────────────────────────────────────────────────────────────

// Per-dimension caps keep the prompt bounded regardless of input size.
const (
	maxPromptDimensions = 12
	maxPromptFindings   = 3
	maxFindingLen       = 160 // characters
	maxOutputTokens     = 600
)

const systemPrompt = `You are a business advisor writing for the owner of a small or medium business.
You will receive the results of a business health assessment: an overall score out of 100 and a score per business area, each with notable strengths and weaknesses.

Write a single executive summary paragraph of 4-6 sentences.
Name the strongest and weakest areas, explain what the overall score means for the business in plain language, and point to the first area to act on.
Be direct and specific. Do not use headings, bullet points, markdown or HTML. Respond with the paragraph only.`

// buildPrompt serialises the request into a compact, bounded prompt string.
func buildPrompt(req NarrativeRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "company: %s\n", orUnknown(req.CompanyName))
	fmt.Fprintf(&sb, "industry: %s\n", orUnknown(req.Industry))
	fmt.Fprintf(&sb, "overall_score: %.0f/100\n\n", req.OverallScore)

	dims := req.Dimensions
	if len(dims) > maxPromptDimensions {
		dims = dims[:maxPromptDimensions]
	}
	for _, d := range dims {
		fmt.Fprintf(&sb, "area: %s\n", d.Name)
		fmt.Fprintf(&sb, "score: %.0f/100\n", d.Score)
		writeFindings(&sb, "strength", d.Strengths)
		writeFindings(&sb, "weakness", d.Weaknesses)
		sb.WriteString("---\n")
	}
	return sb.String()
}

func writeFindings(sb *strings.Builder, label string, items []string) {
	if len(items) > maxPromptFindings {
		items = items[:maxPromptFindings]
	}
	for _, it := range items {
		it = strings.TrimSpace(it)
		if utf8.RuneCountInString(it) > maxFindingLen {
			it = string([]rune(it)[:maxFindingLen])
		}
		if it != "" {
			fmt.Fprintf(sb, "%s: %s\n", label, it)
		}
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

// cleanNarrative strips accidental markdown fences and surrounding whitespace.
func cleanNarrative(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```text")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyNarrative
	}
	return raw, nil
}
