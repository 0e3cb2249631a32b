package questionnaire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingCategory = errors.New("missing category")
	ErrMissingProfile  = errors.New("missing company_profile_id")
)

// Submission is the raw survey payload: one flat answer object per category
// plus a creation timestamp.
type Submission struct {
	CreatedAt  time.Time
	Categories map[CategoryID]Answers
}

// UnmarshalJSON reads the twelve category objects and created_at. Numbers are
// kept as json.Number so integer answers survive exactly. Unknown top-level
// keys are ignored.
func (s *Submission) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("submission: %w", err)
	}

	out := Submission{Categories: make(map[CategoryID]Answers, len(Categories))}

	if ts, ok := raw["created_at"]; ok && string(ts) != "null" {
		if err := json.Unmarshal(ts, &out.CreatedAt); err != nil {
			return fmt.Errorf("submission created_at: %w", err)
		}
	}

	for _, id := range Categories {
		body, ok := raw[string(id)]
		if !ok || string(body) == "null" {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var a Answers
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("submission %s: %w", id, err)
		}
		out.Categories[id] = a
	}

	*s = out
	return nil
}

// ParseSubmission decodes and validates a submission document.
func ParseSubmission(b []byte) (Submission, error) {
	var s Submission
	if err := json.Unmarshal(b, &s); err != nil {
		return Submission{}, err
	}
	if err := s.Validate(); err != nil {
		return Submission{}, err
	}
	return s, nil
}

// Validate reports every absent category, joined.
func (s Submission) Validate() error {
	var errs []error
	for _, id := range Categories {
		if _, ok := s.Categories[id]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingCategory, id))
		}
	}
	return errors.Join(errs...)
}

// Build produces the immutable response record for one submission.
func Build(ctx context.Context, sub Submission, companyProfileID string) (QuestionnaireResponses, error) {
	if strings.TrimSpace(companyProfileID) == "" {
		return QuestionnaireResponses{}, ErrMissingProfile
	}
	if err := sub.Validate(); err != nil {
		return QuestionnaireResponses{}, err
	}

	cats, err := TransformAll(ctx, sub.Categories)
	if err != nil {
		return QuestionnaireResponses{}, err
	}
	overall := Aggregate(cats)

	completed := sub.CreatedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	status := StatusPartial
	if overall.TotalQuestions > 0 && overall.TotalAnswered == overall.TotalQuestions {
		status = StatusCompleted
	}

	return QuestionnaireResponses{
		Metadata: ResponseMetadata{
			ResponseID:        uuid.NewString(),
			CompanyProfileID:  companyProfileID,
			CompletionDate:    completed.UTC().Format(time.RFC3339),
			CompletionStatus:  status,
			TotalQuestions:    overall.TotalQuestions,
			QuestionsAnswered: overall.TotalAnswered,
		},
		Categories:     cats,
		OverallMetrics: overall,
	}, nil
}
