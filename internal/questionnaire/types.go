// Package questionnaire turns a raw survey submission into a normalized,
// scored response record. It holds the twelve category catalogs, the
// per-category transform, the cross-category aggregator, and the structural
// validator. Everything here is pure: no I/O, no shared mutable state.
package questionnaire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// ─── IDENTIFIERS ──────────────────────────────────────────────────────────────

// CategoryID is the stable slug of one of the twelve business categories.
type CategoryID string

const (
	CategoryStrategy           CategoryID = "strategy"
	CategorySales              CategoryID = "sales"
	CategoryMarketing          CategoryID = "marketing"
	CategoryCustomerExperience CategoryID = "customer_experience"
	CategoryOperations         CategoryID = "operations"
	CategoryFinancials         CategoryID = "financials"
	CategoryHumanResources     CategoryID = "human_resources"
	CategoryLeadership         CategoryID = "leadership"
	CategoryTechnology         CategoryID = "technology"
	CategoryITInfrastructure   CategoryID = "it_infrastructure"
	CategoryRisk               CategoryID = "risk"
	CategoryCompliance         CategoryID = "compliance"
)

// ChapterID names one of the four fixed category groupings.
type ChapterID string

const (
	ChapterGrowthEngine         ChapterID = "growth_engine"
	ChapterPerformanceHealth    ChapterID = "performance_health"
	ChapterPeopleLeadership     ChapterID = "people_leadership"
	ChapterResilienceSafeguards ChapterID = "resilience_safeguards"
)

// ResponseType is the declared shape of a question's answer.
type ResponseType string

const (
	ResponseScale               ResponseType = "scale"
	ResponsePercentage          ResponseType = "percentage"
	ResponseNumeric             ResponseType = "numeric"
	ResponseCurrency            ResponseType = "currency"
	ResponseText                ResponseType = "text"
	ResponseBoolean             ResponseType = "boolean"
	ResponseCompositePercentage ResponseType = "composite_percentage"
)

// ─── RESPONSE VALUE ───────────────────────────────────────────────────────────

type valueKind uint8

const (
	kindNumber valueKind = iota
	kindText
	kindParts
)

// ResponseValue is a tagged union: a number (booleans are stored as 0/1), a
// string, or a small mapping of named percentages. The zero value is the
// number 0.
type ResponseValue struct {
	kind  valueKind
	num   float64
	text  string
	parts map[string]float64
}

// NumberValue wraps a numeric answer.
func NumberValue(v float64) ResponseValue { return ResponseValue{kind: kindNumber, num: v} }

// TextValue wraps a free-text answer.
func TextValue(s string) ResponseValue { return ResponseValue{kind: kindText, text: s} }

// BoolValue stores b as 1 or 0.
func BoolValue(b bool) ResponseValue {
	if b {
		return NumberValue(1)
	}
	return NumberValue(0)
}

// CompositeValue wraps a mapping of named percentages. The map is copied.
func CompositeValue(parts map[string]float64) ResponseValue {
	return ResponseValue{kind: kindParts, parts: maps.Clone(parts)}
}

// Number returns the numeric value, or 0 for text and composite values.
func (v ResponseValue) Number() float64 {
	if v.kind != kindNumber {
		return 0
	}
	return v.num
}

// Parts returns a copy of the composite mapping, or nil.
func (v ResponseValue) Parts() map[string]float64 { return maps.Clone(v.parts) }

// IsComposite reports whether the value holds a named-percentage mapping.
func (v ResponseValue) IsComposite() bool { return v.kind == kindParts }

func (v ResponseValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindText:
		return json.Marshal(v.text)
	case kindParts:
		if v.parts == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.parts)
	default:
		return json.Marshal(v.num)
	}
}

func (v *ResponseValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*v = ResponseValue{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("response value: %w", err)
		}
		*v = TextValue(s)
	case '{':
		var parts map[string]float64
		if err := json.Unmarshal(b, &parts); err != nil {
			return fmt.Errorf("response value: %w", err)
		}
		*v = CompositeValue(parts)
	case 't', 'f':
		var flag bool
		if err := json.Unmarshal(b, &flag); err != nil {
			return fmt.Errorf("response value: %w", err)
		}
		*v = BoolValue(flag)
	case 'n':
		*v = ResponseValue{}
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("response value: %w", err)
		}
		*v = NumberValue(n)
	}
	return nil
}

// ─── RECORDS ──────────────────────────────────────────────────────────────────

// Question is one evaluated survey item.
type Question struct {
	QuestionID        string        `json:"question_id"`
	QuestionNumber    int           `json:"question_number"`
	QuestionText      string        `json:"question_text"`
	ResponseType      ResponseType  `json:"response_type"`
	ResponseValue     ResponseValue `json:"response_value"`
	ResponseValueText *string       `json:"response_value_text,omitempty"` // scale only
	ResponseUnit      string        `json:"response_unit,omitempty"`
	NotApplicable     bool          `json:"not_applicable,omitempty"`
	IsEstimate        bool          `json:"is_estimate,omitempty"`
	FollowUpTriggered bool          `json:"follow_up_triggered,omitempty"`
	FollowUpResponse  string        `json:"follow_up_response,omitempty"`
	// QuestionWeight is an importance signal for display. It is not applied
	// to avg_scale_score.
	QuestionWeight float64 `json:"question_weight"`
}

// CategoryMetadata summarises one category's answers.
type CategoryMetadata struct {
	TotalQuestions    int     `json:"total_questions"`
	QuestionsAnswered int     `json:"questions_answered"`
	AvgScaleScore     float64 `json:"avg_scale_score"`
	CalculatedMetrics Metrics `json:"calculated_metrics"`
}

// UnmarshalJSON decodes calculated_metrics into a MetricsMap, since the
// concrete per-category type is not recoverable from JSON alone.
func (m *CategoryMetadata) UnmarshalJSON(b []byte) error {
	var raw struct {
		TotalQuestions    int        `json:"total_questions"`
		QuestionsAnswered int        `json:"questions_answered"`
		AvgScaleScore     float64    `json:"avg_scale_score"`
		CalculatedMetrics MetricsMap `json:"calculated_metrics"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = CategoryMetadata{
		TotalQuestions:    raw.TotalQuestions,
		QuestionsAnswered: raw.QuestionsAnswered,
		AvgScaleScore:     raw.AvgScaleScore,
	}
	if raw.CalculatedMetrics != nil {
		m.CalculatedMetrics = raw.CalculatedMetrics
	}
	return nil
}

// CategoryResponses is the transformed output for one category.
type CategoryResponses struct {
	CategoryID   CategoryID       `json:"category_id"`
	CategoryName string           `json:"category_name"`
	Chapter      ChapterID        `json:"chapter"`
	Questions    []Question       `json:"questions"`
	Metadata     CategoryMetadata `json:"metadata"`
}

// OverallMetrics aggregates all twelve categories.
type OverallMetrics struct {
	TotalQuestions       int                   `json:"total_questions"`
	TotalAnswered        int                   `json:"total_answered"`
	CompletionRate       float64               `json:"completion_rate"`
	OverallAvgScaleScore float64               `json:"overall_avg_scale_score"`
	ChapterScores        map[ChapterID]float64 `json:"chapter_scores"`
}

// ResponseMetadata identifies one submission.
type ResponseMetadata struct {
	ResponseID        string `json:"response_id"`
	CompanyProfileID  string `json:"company_profile_id"`
	CompletionDate    string `json:"completion_date"` // RFC 3339
	CompletionStatus  string `json:"completion_status"`
	TotalQuestions    int    `json:"total_questions"`
	QuestionsAnswered int    `json:"questions_answered"`
}

// QuestionnaireResponses is the root record built once per submission.
// Callers treat it as immutable after Build returns.
type QuestionnaireResponses struct {
	Metadata       ResponseMetadata                 `json:"metadata"`
	Categories     map[CategoryID]CategoryResponses `json:"categories"`
	OverallMetrics OverallMetrics                   `json:"overall_metrics"`
}

// Completion status values.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
)
