// Package report turns category insight data into the assessment report: it
// classifies and tiers every category, projects quick wins, asks the narrator
// for the executive summary (falling back deterministically), and assembles
// the fixed list of section payloads into one HTML document.
package report

import (
	"errors"
	"time"

	"github.com/nyashahama/business-health-backend/internal/ai"
)

// ReportType is the fixed reportType literal for this report kind.
const ReportType = "business_health_assessment"

// ErrNoCategories is returned when the input carries no category insights.
// The assembler returns it as-is; callers compare with errors.Is or ==.
var ErrNoCategories = errors.New("report: no category insights supplied")

// Recommendation is one suggested action for a category.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Effort      string `json:"effort,omitempty"` // Low | Medium | High
	Impact      string `json:"impact,omitempty"` // Low | Medium | High
}

// CategoryInsight is the scored view of one category the report is built from.
type CategoryInsight struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"` // 0–100
	// Benchmark overrides the configured gap benchmark when > 0.
	Benchmark       float64            `json:"benchmark,omitempty"`
	Strengths       []string           `json:"strengths"`
	Weaknesses      []string           `json:"weaknesses"`
	Recommendations []Recommendation   `json:"recommendations"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
}

// ChapterInsight is the score of one chapter, a fixed group of categories.
type ChapterInsight struct {
	Name       string   `json:"name"`
	Score      float64  `json:"score"` // 0–100
	Categories []string `json:"categories"`
}

// ReportInput is everything the assembler needs for one report.
type ReportInput struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	// OverallScore is derived from the categories when nil.
	OverallScore *float64         `json:"overall_score,omitempty"`
	Categories   []CategoryInsight `json:"categories"`
	// Chapters is optional; the Score Snapshot lists them when present.
	Chapters []ChapterInsight `json:"chapters,omitempty"`
}

// Section is one rendered report section.
type Section struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

// Report is the assembled output.
type Report struct {
	ReportType  string    `json:"reportType"`
	Title       string    `json:"title"`
	HTML        string    `json:"html"`
	PageCount   int       `json:"pageCount"`
	Sections    []string  `json:"sections"`
	GeneratedAt time.Time `json:"generatedAt"`
	// Usage is narrative token accounting; nil when the fallback was used.
	Usage *ai.Usage `json:"usage,omitempty"`
}

// Section names in their fixed output order.
const (
	SectionCover            = "Cover"
	SectionExecutiveSummary = "Executive Summary"
	SectionScoreSnapshot    = "Score Snapshot"
	SectionTopPriority      = "Top Priority"
	SectionPriorityMatrix   = "Priority Matrix"
	SectionGapToTarget      = "Gap to Target"
	SectionKeyFindings      = "Key Findings"
	SectionQuickWins        = "Quick Wins"
	SectionActionPlan       = "90-Day Action Plan"
	SectionMetricsTargets   = "Metrics & Targets"
	SectionNextSteps        = "Next Steps"
)
