package report

import (
	"fmt"
	"html"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/nyashahama/business-health-backend/internal/scoring"
)

// Section builders are pure: each reads the view and returns one payload.

func esc(s string) string { return html.EscapeString(s) }

func score0(f float64) string { return fmt.Sprintf("%.0f", f) }

func badge(b scoring.Band) string {
	return fmt.Sprintf(`<span class="badge" style="color:%s;background:%s">%s</span>`,
		b.Color, b.Background, esc(b.Label))
}

// ─── COVER ────────────────────────────────────────────────────────────────────

func coverSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h1>%s</h1>`, esc(v.title))
	if v.industry != "" {
		fmt.Fprintf(&sb, `<p class="industry">Industry: %s</p>`, esc(v.industry))
	}
	fmt.Fprintf(&sb, `<p class="date">Prepared %s</p>`, v.generatedAt.Format("2 January 2006"))
	fmt.Fprintf(&sb, `<p class="overall">Overall score <strong>%s</strong>/100 %s</p>`, score0(v.overall), badge(v.band))
	return Section{Name: SectionCover, HTML: sb.String()}
}

// ─── EXECUTIVE SUMMARY ────────────────────────────────────────────────────────

func executiveSummarySection(v view) Section {
	return Section{
		Name: SectionExecutiveSummary,
		HTML: fmt.Sprintf(`<h2>%s</h2><p class="narrative">%s</p>`, esc(SectionExecutiveSummary), esc(v.narrative)),
	}
}

// ─── SCORE SNAPSHOT ───────────────────────────────────────────────────────────

func scoreSnapshotSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2>`, esc(SectionScoreSnapshot))
	fmt.Fprintf(&sb, `<p>Overall <strong>%s</strong>/100 &middot; %s &middot; %s</p>`,
		score0(v.overall), badge(v.band), esc(v.band.Posture))

	strongest, weakest := v.ranked[0], v.ranked[0]
	for _, d := range v.ranked {
		if d.Score > strongest.Score {
			strongest = d
		}
		if d.Score < weakest.Score {
			weakest = d
		}
	}
	fmt.Fprintf(&sb, `<p>Strongest area: <strong>%s</strong> (%s). Weakest area: <strong>%s</strong> (%s).</p>`,
		esc(strongest.Name), score0(strongest.Score), esc(weakest.Name), score0(weakest.Score))

	sb.WriteString(`<table class="snapshot"><tr><th>Area</th><th>Score</th><th>Band</th></tr>`)
	for _, d := range v.ranked {
		fmt.Fprintf(&sb, `<tr><td>%s</td><td>%s</td><td>%s</td></tr>`, esc(d.Name), score0(d.Score), badge(d.Band))
	}
	sb.WriteString(`</table>`)

	if len(v.chapters) > 0 {
		sb.WriteString(`<h3>By chapter</h3><table class="chapters"><tr><th>Chapter</th><th>Score</th><th>Band</th><th>Areas</th></tr>`)
		for _, ch := range v.chapters {
			areas := make([]string, len(ch.Categories))
			for i, name := range ch.Categories {
				areas[i] = esc(name)
			}
			fmt.Fprintf(&sb, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				esc(ch.Name), score0(ch.Score), badge(scoring.Classify(ch.Score)), strings.Join(areas, ", "))
		}
		sb.WriteString(`</table>`)
	}
	return Section{Name: SectionScoreSnapshot, HTML: sb.String()}
}

// ─── TOP PRIORITY ─────────────────────────────────────────────────────────────

func topPrioritySection(v view) Section {
	top := v.ranked[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2>`, esc(SectionTopPriority))
	fmt.Fprintf(&sb, `<div class="callout"><h3>%s</h3><p>Score %s/100 &middot; <strong>%s</strong> &middot; %s</p>`,
		esc(top.Name), score0(top.Score), esc(top.Tier.String()), esc(top.Band.Posture))
	if recs := v.insights[top.Name].Recommendations; len(recs) > 0 {
		fmt.Fprintf(&sb, `<p>Start here: <strong>%s</strong>. %s</p>`, esc(recs[0].Title), esc(recs[0].Description))
	}
	sb.WriteString(`</div>`)
	return Section{Name: SectionTopPriority, HTML: sb.String()}
}

// ─── PRIORITY MATRIX ──────────────────────────────────────────────────────────

func priorityMatrixSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2>`, esc(SectionPriorityMatrix))
	sb.WriteString(`<table class="priority"><tr><th>#</th><th>Area</th><th>Score</th><th>Band</th><th>Priority</th></tr>`)
	for _, d := range v.ranked {
		tier := esc(d.Tier.String())
		if d.Bumped() {
			tier += ` <span class="bumped" title="Escalated relative to other areas">&uarr;</span>`
		}
		fmt.Fprintf(&sb, `<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			d.Rank, esc(d.Name), score0(d.Score), badge(d.Band), tier)
	}
	sb.WriteString(`</table>`)
	return Section{Name: SectionPriorityMatrix, HTML: sb.String()}
}

// ─── GAP TO TARGET ────────────────────────────────────────────────────────────

func gapToTargetSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2>`, esc(SectionGapToTarget))
	sb.WriteString(`<div class="gap-chart">`)
	for _, d := range v.ranked {
		gap := math.Max(0, d.Gap)
		fmt.Fprintf(&sb,
			`<div class="gap-row"><span class="label">%s</span>`+
				`<span class="bar" style="width:%s%%;background:%s"></span>`+
				`<span class="value">%s / %s (gap %s)</span></div>`,
			esc(d.Name), score0(d.Score), d.Band.Color, score0(d.Score), score0(d.Benchmark), score0(gap))
	}
	sb.WriteString(`</div>`)
	return Section{Name: SectionGapToTarget, HTML: sb.String()}
}

// ─── KEY FINDINGS ─────────────────────────────────────────────────────────────

func keyFindingsSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2>`, esc(SectionKeyFindings))
	for _, d := range v.ranked {
		c := v.insights[d.Name]
		if len(c.Strengths) == 0 && len(c.Weaknesses) == 0 {
			continue
		}
		fmt.Fprintf(&sb, `<h3>%s <small>%s/100</small></h3><ul>`, esc(d.Name), score0(d.Score))
		severity := scoring.SeverityFor(d.Score)
		for _, w := range c.Weaknesses {
			fmt.Fprintf(&sb, `<li class="weakness"><span class="severity">%s</span> %s</li>`, esc(string(severity)), esc(w))
		}
		for _, s := range c.Strengths {
			fmt.Fprintf(&sb, `<li class="strength">%s</li>`, esc(s))
		}
		sb.WriteString(`</ul>`)
	}
	return Section{Name: SectionKeyFindings, HTML: sb.String()}
}

// ─── QUICK WINS ───────────────────────────────────────────────────────────────

func quickWinsSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2>`, esc(SectionQuickWins))
	if len(v.quickWins) == 0 {
		sb.WriteString(`<p>No quick wins were identified.</p>`)
		return Section{Name: SectionQuickWins, HTML: sb.String()}
	}
	sb.WriteString(`<ol class="quick-wins">`)
	for _, w := range v.quickWins {
		p := w.Projection
		fmt.Fprintf(&sb,
			`<li><strong>%s</strong> <em>(%s)</em><p>%s</p>`+
				`<p class="projection">%s &rarr; %s (+%s, closing %s%% of the gap to %s)</p></li>`,
			esc(w.Action.Title), esc(w.Category), esc(w.Action.Description),
			score0(p.Current), score0(p.Projected), score0(p.Improvement), score0(p.GapClosurePercent), score0(p.Benchmark))
	}
	sb.WriteString(`</ol>`)
	return Section{Name: SectionQuickWins, HTML: sb.String()}
}

// ─── 90-DAY PLAN ──────────────────────────────────────────────────────────────

func actionPlanSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2>`, esc(SectionActionPlan))
	for _, ph := range v.plan {
		fmt.Fprintf(&sb, `<h3>%s</h3>`, esc(ph.Label))
		if len(ph.Actions) == 0 {
			sb.WriteString(`<p>No actions scheduled.</p>`)
			continue
		}
		sb.WriteString(`<ul>`)
		for _, a := range ph.Actions {
			fmt.Fprintf(&sb, `<li><strong>%s</strong> (%s)</li>`, esc(a.Action.Title), esc(a.Category))
		}
		sb.WriteString(`</ul>`)
	}
	return Section{Name: SectionActionPlan, HTML: sb.String()}
}

// ─── METRICS & TARGETS ────────────────────────────────────────────────────────

// target is the next band's floor, capped at the excellence benchmark and
// never below the current score.
func target(cfg scoring.Config, d scoring.RankedDimension) float64 {
	t := math.Min(scoring.NextBand(d.Band).Floor, cfg.ExcellenceBenchmark)
	return math.Max(t, d.Score)
}

func metricsTargetsSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2>`, esc(SectionMetricsTargets))
	sb.WriteString(`<table class="targets"><tr><th>Area</th><th>Current</th><th>Target</th><th>Projected</th></tr>`)
	for _, d := range v.ranked {
		t := target(v.cfg, d)
		p := v.cfg.ExpectedOutcome(d.Score, t)
		fmt.Fprintf(&sb, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			esc(d.Name), score0(d.Score), score0(t), score0(p.Projected))
	}
	sb.WriteString(`</table>`)

	for _, d := range v.ranked {
		m := v.insights[d.Name].Metrics
		if len(m) == 0 {
			continue
		}
		fmt.Fprintf(&sb, `<h3>%s</h3><dl>`, esc(d.Name))
		for _, k := range slices.Sorted(maps.Keys(m)) {
			fmt.Fprintf(&sb, `<dt>%s</dt><dd>%s</dd>`, esc(metricLabel(k)), formatMetric(m[k]))
		}
		sb.WriteString(`</dl>`)
	}
	return Section{Name: SectionMetricsTargets, HTML: sb.String()}
}

func metricLabel(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		switch w {
		case "cac", "ltv":
			words[i] = strings.ToUpper(w)
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatMetric(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.2f", f)
}

// ─── NEXT STEPS ───────────────────────────────────────────────────────────────

func nextStepsSection(v view) Section {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<h2>%s</h2><ol>`, esc(SectionNextSteps))
	focus := v.ranked
	if len(focus) > 3 {
		focus = focus[:3]
	}
	names := make([]string, len(focus))
	for i, d := range focus {
		names[i] = esc(d.Name)
	}
	fmt.Fprintf(&sb, `<li>Share this report with your leadership team and agree owners for %s.</li>`, strings.Join(names, ", "))
	sb.WriteString(`<li>Schedule the Days 0–30 actions this week and review progress every two weeks.</li>`)
	sb.WriteString(`<li>Retake the assessment in 90 days to measure movement against the targets above.</li>`)
	sb.WriteString(`</ol>`)
	return Section{Name: SectionNextSteps, HTML: sb.String()}
}
