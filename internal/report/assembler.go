package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyashahama/business-health-backend/internal/ai"
	"github.com/nyashahama/business-health-backend/internal/safe"
	"github.com/nyashahama/business-health-backend/internal/scoring"
)

// DefaultQuickWinLimit caps the Quick Wins section.
const DefaultQuickWinLimit = 5

// charsPerPage is the page-count estimate divisor, in characters.
const charsPerPage = 3000

// Assembler builds reports. It holds no per-report state and is safe for
// concurrent use.
type Assembler struct {
	cfg           scoring.Config
	narrative     *NarrativeAdapter
	logger        *slog.Logger
	now           func() time.Time
	quickWinLimit int
}

// Option customises an Assembler.
type Option func(*Assembler)

// WithClock replaces time.Now for generatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithQuickWinLimit sets the maximum number of quick wins listed. n ≤ 0
// keeps the default.
func WithQuickWinLimit(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.quickWinLimit = n
		}
	}
}

// NewAssembler returns an Assembler. narrator may be nil.
func NewAssembler(cfg scoring.Config, narrator ai.Narrator, logger *slog.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		cfg:           cfg,
		narrative:     NewNarrativeAdapter(narrator, logger),
		logger:        logger,
		now:           time.Now,
		quickWinLimit: DefaultQuickWinLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ─── VIEW ─────────────────────────────────────────────────────────────────────

// view is the per-render scoring state every section builder reads. It is
// recomputed on every Assemble call.
type view struct {
	cfg         scoring.Config
	company     string
	industry    string
	title       string
	generatedAt time.Time
	overall     float64
	band        scoring.Band
	narrative   string
	ranked      []scoring.RankedDimension // priority order
	insights    map[string]CategoryInsight
	chapters    []ChapterInsight
	quickWins   []quickWin
	plan        []planPhase
}

type quickWin struct {
	Category   string
	Action     Recommendation
	Projection scoring.Projection
}

type planPhase struct {
	Label   string
	Tiers   []scoring.Tier
	Actions []quickWin
}

// ─── ASSEMBLE ─────────────────────────────────────────────────────────────────

// Assemble builds the full report. The only error is ErrNoCategories;
// narrative failures are absorbed by the fallback.
func (a *Assembler) Assemble(ctx context.Context, in ReportInput) (Report, error) {
	if len(in.Categories) == 0 {
		return Report{}, ErrNoCategories
	}

	v := a.buildView(in)

	text, usage := a.narrative.Generate(ctx, narrativeRequest(v, in))
	v.narrative = text

	sections := []Section{
		coverSection(v),
		executiveSummarySection(v),
		scoreSnapshotSection(v),
		topPrioritySection(v),
		priorityMatrixSection(v),
		gapToTargetSection(v),
		keyFindingsSection(v),
		quickWinsSection(v),
		actionPlanSection(v),
		metricsTargetsSection(v),
		nextStepsSection(v),
	}

	doc := renderDocument(v.title, sections)
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}

	a.logger.Debug("report: assembled",
		"company", v.company,
		"categories", len(in.Categories),
		"overall_score", v.overall,
		"narrative_fallback", usage == nil,
		"bytes", len(doc),
	)

	return Report{
		ReportType:  ReportType,
		Title:       v.title,
		HTML:        doc,
		PageCount:   pageCount(doc),
		Sections:    names,
		GeneratedAt: v.generatedAt,
		Usage:       usage,
	}, nil
}

// pageCount estimates printed pages from the document's character count.
func pageCount(doc string) int {
	return (utf8.RuneCountInString(doc) + charsPerPage - 1) / charsPerPage
}

func (a *Assembler) buildView(in ReportInput) view {
	v := view{
		cfg:         a.cfg,
		company:     strings.TrimSpace(in.CompanyName),
		industry:    strings.TrimSpace(in.Industry),
		generatedAt: a.now().UTC(),
		insights:    make(map[string]CategoryInsight, len(in.Categories)),
	}
	v.title = "Business Health Assessment"
	if v.company != "" {
		v.title = v.company + " Business Health Assessment"
	}

	dims := make([]scoring.Dimension, 0, len(in.Categories))
	for i, c := range in.Categories {
		c.Score = safe.Clamp(c.Score, 0, 100)
		if strings.TrimSpace(c.Name) == "" {
			c.Name = fallbackName(c.ID, i)
		}
		c.Name = uniqueName(v.insights, c.Name, i+1)
		v.insights[c.Name] = c
		dims = append(dims, scoring.Dimension{Name: c.Name, Score: c.Score, Benchmark: c.Benchmark})
	}

	if in.OverallScore != nil {
		v.overall = safe.Clamp(*in.OverallScore, 0, 100)
	} else {
		v.overall = float64(scoring.OverallScore(dims))
	}
	for _, ch := range in.Chapters {
		ch.Score = safe.Clamp(ch.Score, 0, 100)
		v.chapters = append(v.chapters, ch)
	}
	v.band = scoring.Classify(v.overall)
	v.ranked = a.cfg.RankDimensions(dims)
	v.quickWins = a.selectQuickWins(v)
	v.plan = buildPlan(v)
	return v
}

// uniqueName keeps later duplicates of a name distinct by suffixing the
// input position, counting up until the result is unused.
func uniqueName(seen map[string]CategoryInsight, name string, pos int) string {
	candidate := name
	for n := pos; ; n++ {
		if _, dup := seen[candidate]; !dup {
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
}

func fallbackName(id string, i int) string {
	if id = strings.TrimSpace(id); id != "" {
		return strings.ReplaceAll(id, "_", " ")
	}
	return fmt.Sprintf("Category %d", i+1)
}

// ─── QUICK WINS & PLAN ────────────────────────────────────────────────────────

var effortRank = map[string]int{"low": 0, "medium": 1, "high": 2}

func effortOf(r Recommendation) int {
	if n, ok := effortRank[strings.ToLower(strings.TrimSpace(r.Effort))]; ok {
		return n
	}
	return len(effortRank)
}

// dedupedActions walks categories in priority order and returns every
// recommendation whose title has not been emitted for an earlier category.
func dedupedActions(v view) []quickWin {
	set := scoring.NewTitleSet()
	var out []quickWin
	for _, d := range v.ranked {
		recs := scoring.Dedupe(set, v.insights[d.Name].Recommendations, func(r Recommendation) string { return r.Title })
		for _, r := range recs {
			out = append(out, quickWin{
				Category:   d.Name,
				Action:     r,
				Projection: v.cfg.ExpectedOutcome(d.Score, 0),
			})
		}
	}
	return out
}

// selectQuickWins keeps priority order but prefers lower effort, then caps
// the list.
func (a *Assembler) selectQuickWins(v view) []quickWin {
	wins := dedupedActions(v)
	sort.SliceStable(wins, func(i, j int) bool {
		return effortOf(wins[i].Action) < effortOf(wins[j].Action)
	})
	if len(wins) > a.quickWinLimit {
		wins = wins[:a.quickWinLimit]
	}
	return wins
}

// buildPlan groups every de-duplicated action into three 30-day phases by the
// owning category's tier after the bump pass.
func buildPlan(v view) []planPhase {
	phases := []planPhase{
		{Label: "Days 0–30", Tiers: []scoring.Tier{scoring.TierUrgent, scoring.TierHigh}},
		{Label: "Days 31–60", Tiers: []scoring.Tier{scoring.TierMedium}},
		{Label: "Days 61–90", Tiers: []scoring.Tier{scoring.TierOptimize, scoring.TierMaintain}},
	}
	byCategory := make(map[string][]quickWin, len(v.ranked))
	for _, act := range dedupedActions(v) {
		byCategory[act.Category] = append(byCategory[act.Category], act)
	}
	for i := range phases {
		for _, d := range scoring.FilterByTier(v.ranked, phases[i].Tiers...) {
			phases[i].Actions = append(phases[i].Actions, byCategory[d.Name]...)
		}
	}
	return phases
}

// ─── NARRATIVE REQUEST ────────────────────────────────────────────────────────

func narrativeRequest(v view, in ReportInput) ai.NarrativeRequest {
	req := ai.NarrativeRequest{
		CompanyName:  v.company,
		Industry:     v.industry,
		OverallScore: v.overall,
		Dimensions:   make([]ai.Dimension, 0, len(in.Categories)),
	}
	for _, d := range v.ranked {
		c := v.insights[d.Name]
		req.Dimensions = append(req.Dimensions, ai.Dimension{
			Name:       d.Name,
			Score:      d.Score,
			Strengths:  c.Strengths,
			Weaknesses: c.Weaknesses,
		})
	}
	return req
}
