package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/nyashahama/business-health-backend/internal/ai"
	"github.com/nyashahama/business-health-backend/internal/scoring"
)

// NarrativeAdapter wraps a Narrator so that narrative generation never fails:
// any error, panic or empty answer is logged as a warning and replaced by a
// deterministic paragraph built from the overall score. There are no retries.
type NarrativeAdapter struct {
	narrator ai.Narrator
	logger   *slog.Logger
}

// NewNarrativeAdapter returns an adapter. narrator may be nil, in which case
// the fallback is always used.
func NewNarrativeAdapter(narrator ai.Narrator, logger *slog.Logger) *NarrativeAdapter {
	return &NarrativeAdapter{narrator: narrator, logger: logger}
}

// Generate returns narrative text and, when a provider answered, its usage.
func (a *NarrativeAdapter) Generate(ctx context.Context, req ai.NarrativeRequest) (text string, usage *ai.Usage) {
	if a.narrator == nil {
		return FallbackNarrative(req.OverallScore), nil
	}

	result, err := a.call(ctx, req)
	if err == nil && result.Text == "" {
		err = ai.ErrEmptyNarrative
	}
	if err != nil {
		a.logger.Warn("report: narrative generation failed, using fallback",
			"error", err,
			"company", req.CompanyName,
			"overall_score", req.OverallScore,
		)
		return FallbackNarrative(req.OverallScore), nil
	}
	return result.Text, &result.Usage
}

func (a *NarrativeAdapter) call(ctx context.Context, req ai.NarrativeRequest) (result ai.NarrativeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("narrator panic: %v", r)
		}
	}()
	return a.narrator.GenerateNarrative(ctx, req)
}

// FallbackNarrative is the deterministic executive summary used whenever the
// narrator is unavailable. It depends only on the overall score.
func FallbackNarrative(overall float64) string {
	score := int(math.Round(overall))
	band := scoring.Classify(overall)
	return fmt.Sprintf(
		"Your business achieved an overall health score of %d out of 100, which places it in the %s band. "+
			"The recommended posture at this level is %s. "+
			"The sections that follow rank every business area by urgency, show the gap between each area and its target, "+
			"and set out quick wins and a 90-day plan to lift the lowest-scoring areas first.",
		score, band.Label, band.Posture,
	)
}
