package questionnaire

import (
	"fmt"
	"strings"
)

// ValidationResult lists every structural defect found. Valid is true iff
// Errors is empty.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks an assembled response record. It never fails; defects are
// enumerated for the caller to act on.
func Validate(r QuestionnaireResponses) ValidationResult {
	errs := []string{}

	if strings.TrimSpace(r.Metadata.ResponseID) == "" {
		errs = append(errs, "missing response_id")
	}
	if strings.TrimSpace(r.Metadata.CompanyProfileID) == "" {
		errs = append(errs, "missing company_profile_id")
	}
	if strings.TrimSpace(r.Metadata.CompletionDate) == "" {
		errs = append(errs, "missing completion_date")
	}
	for _, id := range Categories {
		if _, ok := r.Categories[id]; !ok {
			errs = append(errs, fmt.Sprintf("missing category: %s", id))
		}
	}
	if r.OverallMetrics.TotalQuestions == 0 {
		errs = append(errs, "total_questions is 0")
	}
	if cr := r.OverallMetrics.CompletionRate; cr < 0 || cr > 100 {
		errs = append(errs, fmt.Sprintf("completion_rate %.1f outside [0, 100]", cr))
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
