package questionnaire

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nyashahama/business-health-backend/internal/safe"
)

// Transform maps one category's raw answers onto its fixed question catalog.
// ok is false only when id is not one of the twelve known categories.
func Transform(id CategoryID, a Answers) (CategoryResponses, bool) {
	spec, ok := catalog[id]
	if !ok {
		return CategoryResponses{}, false
	}

	questions := make([]Question, 0, len(spec.Questions))
	var scaleSum float64
	var scaleCount int

	for i, qs := range spec.Questions {
		q := Question{
			QuestionID:     fmt.Sprintf("%s_q%d", spec.ID, i+1),
			QuestionNumber: i + 1,
			QuestionText:   qs.Text,
			ResponseType:   qs.Type,
			ResponseUnit:   qs.Unit,
			QuestionWeight: qs.Weight,
			NotApplicable:  anySet(a, qs.NAFlags),
		}
		if qs.Estimate != "" {
			q.IsEstimate = a.Bool(qs.Estimate)
		}

		switch qs.Type {
		case ResponseScale:
			rating := scaleAnswer(a, qs.Field)
			label := ScaleLabel(int(rating))
			q.ResponseValue = NumberValue(rating)
			q.ResponseValueText = &label
			scaleSum += rating
			scaleCount++
		case ResponseText:
			q.ResponseValue = TextValue(a.String(qs.Field))
		case ResponseBoolean:
			q.ResponseValue = BoolValue(a.Bool(qs.Field))
		case ResponseCompositePercentage:
			parts := make(map[string]float64, len(qs.Parts))
			for _, p := range qs.Parts {
				parts[p] = a.Number(p)
			}
			q.ResponseValue = CompositeValue(parts)
		default:
			q.ResponseValue = NumberValue(a.Number(qs.Field))
		}

		if followUpTriggered(qs, a) {
			q.FollowUpTriggered = true
			q.FollowUpResponse = a.String(qs.FollowUpField)
		}
		questions = append(questions, q)
	}

	var avg float64
	if scaleCount > 0 {
		avg = safe.Round(scaleSum/float64(scaleCount), 2)
	}

	return CategoryResponses{
		CategoryID:   spec.ID,
		CategoryName: spec.Name,
		Chapter:      spec.Chapter,
		Questions:    questions,
		Metadata: CategoryMetadata{
			TotalQuestions:    len(questions),
			QuestionsAnswered: len(questions),
			AvgScaleScore:     avg,
			CalculatedMetrics: spec.Metrics(a),
		},
	}, true
}

// TransformAll runs every category transform concurrently. Categories absent
// from answers are transformed from an empty bundle; unknown keys are ignored.
func TransformAll(ctx context.Context, answers map[CategoryID]Answers) (map[CategoryID]CategoryResponses, error) {
	results := make([]CategoryResponses, len(Categories))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range Categories {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], _ = Transform(id, answers[id])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("transform categories: %w", err)
	}

	out := make(map[CategoryID]CategoryResponses, len(results))
	for _, r := range results {
		out[r.CategoryID] = r
	}
	return out, nil
}

func anySet(a Answers, flags []string) bool {
	for _, f := range flags {
		if a.Bool(f) {
			return true
		}
	}
	return false
}

func followUpTriggered(qs questionSpec, a Answers) bool {
	switch qs.FollowUp {
	case followUpWhenTrue:
		return a.Bool(qs.Field)
	case followUpWhenFalse:
		return !a.Bool(qs.Field)
	case followUpWhenLowScale:
		return scaleAnswer(a, qs.Field) <= 2
	default:
		return false
	}
}
