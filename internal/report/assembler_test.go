package report_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/nyashahama/business-health-backend/internal/ai"
	"github.com/nyashahama/business-health-backend/internal/report"
	"github.com/nyashahama/business-health-backend/internal/scoring"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

type stubNarrator struct {
	result ai.NarrativeResult
	err    error
	panics bool
	calls  int
	got    ai.NarrativeRequest
}

func (s *stubNarrator) GenerateNarrative(_ context.Context, req ai.NarrativeRequest) (ai.NarrativeResult, error) {
	s.calls++
	s.got = req
	if s.panics {
		panic("provider exploded")
	}
	return s.result, s.err
}

// discardLogger returns a *slog.Logger that silently drops all log output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newAssembler(n ai.Narrator, opts ...report.Option) *report.Assembler {
	opts = append([]report.Option{report.WithClock(func() time.Time { return fixedNow })}, opts...)
	return report.NewAssembler(scoring.DefaultConfig(), n, discardLogger(), opts...)
}

func sampleInput() report.ReportInput {
	return report.ReportInput{
		CompanyName: "Acme Plumbing",
		Industry:    "Construction",
		Categories: []report.CategoryInsight{
			{
				ID:         "sales",
				Name:       "Sales",
				Score:      45,
				Strengths:  []string{"Repeat customers are loyal"},
				Weaknesses: []string{"No documented sales process"},
				Recommendations: []report.Recommendation{
					{Title: "Adopt a CRM", Description: "Track every lead.", Effort: "High", Impact: "High"},
					{Title: "Document the sales process", Description: "Write it down.", Effort: "Low", Impact: "High"},
				},
				Metrics: map[string]float64{"sales_velocity": 20, "close_rate": 32.5},
			},
			{
				ID:         "marketing",
				Name:       "Marketing",
				Score:      65,
				Weaknesses: []string{"ROI is not tracked"},
				Recommendations: []report.Recommendation{
					{Title: "  adopt a crm ", Description: "Duplicate of the sales action.", Effort: "Low"},
					{Title: "Track marketing return", Description: "Tag every lead.", Effort: "Medium"},
				},
				Metrics: map[string]float64{"ltv_cac_ratio": 3},
			},
			{
				ID:        "operations",
				Name:      "Operations",
				Score:     85,
				Strengths: []string{"Processes are documented"},
			},
		},
	}
}

// sectionHTML returns the body of the section with the given anchor id.
func sectionHTML(t *testing.T, doc, id string) string {
	t.Helper()
	open := `<section class="report-section" id="` + id + `">`
	start := strings.Index(doc, open)
	if start < 0 {
		t.Fatalf("section %q not found", id)
	}
	rest := doc[start+len(open):]
	end := strings.Index(rest, "</section>")
	if end < 0 {
		t.Fatalf("section %q not closed", id)
	}
	return rest[:end]
}

// ─── Assemble ─────────────────────────────────────────────────────────────────

func TestAssemble_SectionsInFixedOrder(t *testing.T) {
	rep, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	want := []string{
		"Cover", "Executive Summary", "Score Snapshot", "Top Priority", "Priority Matrix",
		"Gap to Target", "Key Findings", "Quick Wins", "90-Day Action Plan", "Metrics & Targets", "Next Steps",
	}
	if diff := cmp.Diff(want, rep.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}

	ids := []string{
		"cover", "executive-summary", "score-snapshot", "top-priority", "priority-matrix",
		"gap-to-target", "key-findings", "quick-wins", "90-day-action-plan", "metrics-targets", "next-steps",
	}
	last := -1
	for _, id := range ids {
		i := strings.Index(rep.HTML, `id="`+id+`"`)
		if i < 0 {
			t.Fatalf("section id %q missing from document", id)
		}
		if i < last {
			t.Errorf("section %q rendered out of order", id)
		}
		last = i
	}
}

func TestAssemble_Metadata(t *testing.T) {
	rep, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if rep.ReportType != "business_health_assessment" {
		t.Errorf("ReportType = %q", rep.ReportType)
	}
	if rep.Title != "Acme Plumbing Business Health Assessment" {
		t.Errorf("Title = %q", rep.Title)
	}
	if !rep.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v, want %v", rep.GeneratedAt, fixedNow)
	}
	wantPages := (utf8.RuneCountInString(rep.HTML) + 2999) / 3000
	if rep.PageCount != wantPages || rep.PageCount < 1 {
		t.Errorf("PageCount = %d, want %d", rep.PageCount, wantPages)
	}
	if !strings.HasPrefix(rep.HTML, "<!DOCTYPE html>") {
		t.Error("document does not start with a doctype")
	}
}

func TestAssemble_PageCountUsesCharacters(t *testing.T) {
	pages := func(n int) int { return (n + 2999) / 3000 }

	// Grow the company name until byte and character counts fall on
	// different pages; the document always carries multi-byte runes.
	a := newAssembler(nil)
	for n := 0; n < 3000; n++ {
		in := sampleInput()
		in.CompanyName = strings.Repeat("x", n)
		rep, err := a.Assemble(context.Background(), in)
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		chars := utf8.RuneCountInString(rep.HTML)
		if pages(len(rep.HTML)) == pages(chars) {
			continue
		}
		if rep.PageCount != pages(chars) {
			t.Errorf("PageCount = %d for %d bytes / %d chars, want %d", rep.PageCount, len(rep.HTML), chars, pages(chars))
		}
		return
	}
	t.Fatal("no company name length put bytes and characters on different pages")
}

func TestAssemble_NoCompanyName_GenericTitle(t *testing.T) {
	in := sampleInput()
	in.CompanyName = "   "
	rep, err := newAssembler(nil).Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if rep.Title != "Business Health Assessment" {
		t.Errorf("Title = %q", rep.Title)
	}
}

func TestAssemble_NoCategories(t *testing.T) {
	n := &stubNarrator{result: ai.NarrativeResult{Text: "unused"}}
	_, err := newAssembler(n).Assemble(context.Background(), report.ReportInput{CompanyName: "Acme"})
	if !errors.Is(err, report.ErrNoCategories) {
		t.Fatalf("err = %v, want ErrNoCategories", err)
	}
	if n.calls != 0 {
		t.Errorf("narrator called %d times for an empty report", n.calls)
	}
}

// ─── Narrative ────────────────────────────────────────────────────────────────

func TestAssemble_NarratorFailure_UsesFallback(t *testing.T) {
	cases := []struct {
		name string
		n    *stubNarrator
	}{
		{"error", &stubNarrator{err: errors.New("upstream 503")}},
		{"empty text", &stubNarrator{result: ai.NarrativeResult{Text: ""}}},
		{"panic", &stubNarrator{panics: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep, err := newAssembler(tc.n).Assemble(context.Background(), sampleInput())
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if rep.Usage != nil {
				t.Errorf("Usage = %+v, want nil on fallback", rep.Usage)
			}
			summary := sectionHTML(t, rep.HTML, "executive-summary")
			// (45 + 65 + 85) / 3 = 65
			if !strings.Contains(summary, "overall health score of 65 out of 100") {
				t.Errorf("fallback narrative missing overall score:\n%s", summary)
			}
			if !strings.Contains(summary, "Attention") {
				t.Errorf("fallback narrative missing band label:\n%s", summary)
			}
		})
	}
}

func TestAssemble_NarratorSuccess(t *testing.T) {
	n := &stubNarrator{result: ai.NarrativeResult{
		Text:  "Acme is steady but sales need <attention>.",
		Usage: ai.Usage{Provider: "anthropic", InputTokens: 420, OutputTokens: 180},
	}}
	rep, err := newAssembler(n).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if n.calls != 1 {
		t.Errorf("narrator calls = %d, want 1", n.calls)
	}
	want := &ai.Usage{Provider: "anthropic", InputTokens: 420, OutputTokens: 180}
	if diff := cmp.Diff(want, rep.Usage); diff != "" {
		t.Errorf("usage mismatch (-want +got):\n%s", diff)
	}
	summary := sectionHTML(t, rep.HTML, "executive-summary")
	if !strings.Contains(summary, "sales need &lt;attention&gt;.") {
		t.Errorf("narrative not escaped into summary:\n%s", summary)
	}

	// The narrator sees dimensions in priority order.
	if n.got.OverallScore != 65 || n.got.CompanyName != "Acme Plumbing" {
		t.Errorf("request = %+v", n.got)
	}
	var names []string
	for _, d := range n.got.Dimensions {
		names = append(names, d.Name)
	}
	if diff := cmp.Diff([]string{"Sales", "Marketing", "Operations"}, names); diff != "" {
		t.Errorf("request dimension order (-want +got):\n%s", diff)
	}
}

func TestAssemble_ExplicitOverallScore(t *testing.T) {
	in := sampleInput()
	overall := 91.0
	in.OverallScore = &overall

	rep, err := newAssembler(nil).Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	summary := sectionHTML(t, rep.HTML, "executive-summary")
	if !strings.Contains(summary, "score of 91 out of 100") || !strings.Contains(summary, "Excellence") {
		t.Errorf("explicit overall score ignored:\n%s", summary)
	}
}

// ─── Scoring sections ─────────────────────────────────────────────────────────

func TestAssemble_PriorityMatrix_MarksBump(t *testing.T) {
	rep, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	matrix := sectionHTML(t, rep.HTML, "priority-matrix")

	rows := strings.Split(matrix, "<tr>")
	// rows[0] precedes the table, rows[1] is the header.
	if len(rows) != 5 {
		t.Fatalf("matrix rows = %d, want header + 3", len(rows)-1)
	}
	// Sales (45) is both lowest and furthest below 70: High → Urgent.
	if !strings.Contains(rows[2], "Sales") || !strings.Contains(rows[2], "Urgent") || !strings.Contains(rows[2], "&uarr;") {
		t.Errorf("first row should be bumped Sales:\n%s", rows[2])
	}
	if !strings.Contains(rows[3], "Marketing") || strings.Contains(rows[3], "&uarr;") {
		t.Errorf("second row should be unbumped Marketing:\n%s", rows[3])
	}
	if !strings.Contains(rows[4], "Operations") || !strings.Contains(rows[4], "Maintain") {
		t.Errorf("third row should be Operations at Maintain:\n%s", rows[4])
	}
}

func TestAssemble_TopPriority(t *testing.T) {
	rep, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	top := sectionHTML(t, rep.HTML, "top-priority")
	if !strings.Contains(top, "Sales") || !strings.Contains(top, "Adopt a CRM") {
		t.Errorf("top priority should name Sales and its first action:\n%s", top)
	}
}

func TestAssemble_QuickWins_DedupedAndEffortOrdered(t *testing.T) {
	rep, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	wins := sectionHTML(t, rep.HTML, "quick-wins")

	if n := strings.Count(strings.ToLower(wins), "adopt a crm"); n != 1 {
		t.Errorf("duplicate action listed %d times, want 1:\n%s", n, wins)
	}
	if strings.Contains(wins, "Duplicate of the sales action") {
		t.Error("lower-priority duplicate survived de-duplication")
	}
	low := strings.Index(wins, "Document the sales process")
	medium := strings.Index(wins, "Track marketing return")
	high := strings.Index(wins, "Adopt a CRM")
	if low < 0 || medium < 0 || high < 0 {
		t.Fatalf("missing quick wins:\n%s", wins)
	}
	if !(low < medium && medium < high) {
		t.Errorf("quick wins not ordered by effort: low=%d medium=%d high=%d", low, medium, high)
	}
	// Sales at 45: gap to 80 is 35, half closed rounds to 18.
	if !strings.Contains(wins, "45 &rarr; 63 (+18") {
		t.Errorf("projection missing:\n%s", wins)
	}
}

func TestAssemble_QuickWinLimit(t *testing.T) {
	rep, err := newAssembler(nil, report.WithQuickWinLimit(1)).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	wins := sectionHTML(t, rep.HTML, "quick-wins")
	if n := strings.Count(wins, "<li>"); n != 1 {
		t.Errorf("quick wins = %d, want 1", n)
	}
}

func TestAssemble_NoRecommendations(t *testing.T) {
	in := report.ReportInput{Categories: []report.CategoryInsight{{Name: "Risk", Score: 50}}}
	rep, err := newAssembler(nil).Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(sectionHTML(t, rep.HTML, "quick-wins"), "No quick wins were identified.") {
		t.Error("empty quick wins placeholder missing")
	}
}

func TestAssemble_ActionPlanPhases(t *testing.T) {
	rep, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	plan := sectionHTML(t, rep.HTML, "90-day-action-plan")

	first := strings.Index(plan, "Days 0–30")
	second := strings.Index(plan, "Days 31–60")
	third := strings.Index(plan, "Days 61–90")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("plan phases missing:\n%s", plan)
	}
	// Sales is Urgent after the bump; Marketing (65) is Medium.
	if i := strings.Index(plan, "Adopt a CRM"); i < first || i > second {
		t.Errorf("sales action not in the first phase:\n%s", plan)
	}
	if i := strings.Index(plan, "Track marketing return"); i < second || i > third {
		t.Errorf("marketing action not in the second phase:\n%s", plan)
	}
	if !strings.Contains(plan[third:], "No actions scheduled.") {
		t.Errorf("empty last phase should say so:\n%s", plan[third:])
	}
}

func TestAssemble_KeyFindingsSeverity(t *testing.T) {
	rep, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	findings := sectionHTML(t, rep.HTML, "key-findings")
	if !strings.Contains(findings, "Area for Improvement</span> No documented sales process") {
		t.Errorf("sales weakness should carry its severity:\n%s", findings)
	}
	if !strings.Contains(findings, "Processes are documented") {
		t.Errorf("strength missing:\n%s", findings)
	}
}

func TestAssemble_MetricsTargets(t *testing.T) {
	rep, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	m := sectionHTML(t, rep.HTML, "metrics-targets")
	for _, want := range []string{
		"<dt>Close Rate</dt><dd>32.50</dd>",
		"<dt>Sales Velocity</dt><dd>20</dd>",
		"<dt>LTV CAC Ratio</dt><dd>3</dd>",
		// Sales 45 (Concern) targets the Attention floor, 60.
		"<tr><td>Sales</td><td>45</td><td>60</td>",
		// Operations 85 is already past the excellence target.
		"<tr><td>Operations</td><td>85</td><td>85</td>",
	} {
		if !strings.Contains(m, want) {
			t.Errorf("metrics section missing %q:\n%s", want, m)
		}
	}
}

func TestAssemble_ChapterTable(t *testing.T) {
	in := sampleInput()
	in.Chapters = []report.ChapterInsight{
		{Name: "Growth Engine", Score: 55, Categories: []string{"Sales", "Marketing"}},
		{Name: "Performance & Health", Score: 130, Categories: []string{"Operations"}},
	}
	rep, err := newAssembler(nil).Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	snap := sectionHTML(t, rep.HTML, "score-snapshot")
	for _, want := range []string{
		"<tr><td>Growth Engine</td><td>55</td>",
		">Concern</span></td><td>Sales, Marketing</td>",
		"<tr><td>Performance &amp; Health</td><td>100</td>",
	} {
		if !strings.Contains(snap, want) {
			t.Errorf("snapshot missing %q:\n%s", want, snap)
		}
	}

	plain, err := newAssembler(nil).Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Contains(plain.HTML, "By chapter") {
		t.Error("chapter table rendered without chapter input")
	}
}

func TestAssemble_DuplicateSuffixNeverCollides(t *testing.T) {
	in := report.ReportInput{Categories: []report.CategoryInsight{
		{Name: "Sales", Score: 50, Weaknesses: []string{"first"}},
		{Name: "Sales (3)", Score: 30, Weaknesses: []string{"second"}},
		{Name: "Sales", Score: 60, Weaknesses: []string{"third"}},
	}}
	rep, err := newAssembler(nil).Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	snap := sectionHTML(t, rep.HTML, "score-snapshot")
	for _, want := range []string{
		"<td>Sales</td><td>50</td>",
		"<td>Sales (3)</td><td>30</td>",
		"<td>Sales (4)</td><td>60</td>",
	} {
		if !strings.Contains(snap, want) {
			t.Errorf("snapshot missing %q:\n%s", want, snap)
		}
	}
	findings := sectionHTML(t, rep.HTML, "key-findings")
	for _, w := range []string{"first", "second", "third"} {
		if strings.Count(findings, w) != 1 {
			t.Errorf("finding %q appears %d times, want 1", w, strings.Count(findings, w))
		}
	}
}

func TestAssemble_ClampsAndNamesCategories(t *testing.T) {
	in := report.ReportInput{Categories: []report.CategoryInsight{
		{ID: "it_infrastructure", Score: 140},
		{Score: -5},
		{Name: "Risk", Score: 50},
		{Name: "Risk", Score: 55},
	}}
	rep, err := newAssembler(nil).Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	snap := sectionHTML(t, rep.HTML, "score-snapshot")
	for _, want := range []string{
		"<td>it infrastructure</td><td>100</td>",
		"<td>Category 2</td><td>0</td>",
		"<td>Risk</td><td>50</td>",
		"<td>Risk (4)</td><td>55</td>",
	} {
		if !strings.Contains(snap, want) {
			t.Errorf("snapshot missing %q:\n%s", want, snap)
		}
	}
}

func TestAssemble_EscapesUserText(t *testing.T) {
	in := sampleInput()
	in.CompanyName = `<script>alert("x")</script>`
	rep, err := newAssembler(nil).Assemble(context.Background(), in)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Contains(rep.HTML, "<script>") {
		t.Error("company name rendered unescaped")
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	a := newAssembler(nil)
	first, err := a.Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	second, err := a.Assemble(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeat assembly differs (-first +second):\n%s", diff)
	}
}

// ─── FallbackNarrative ────────────────────────────────────────────────────────

func TestFallbackNarrative(t *testing.T) {
	cases := []struct {
		overall float64
		want    []string
	}{
		{12.4, []string{"score of 12 out of 100", "Critical", "Immediate Focus"}},
		{70, []string{"score of 70 out of 100", "Proficiency", "Optimize & Refine"}},
		{79.6, []string{"score of 80 out of 100", "Proficiency"}},
	}
	for _, tc := range cases {
		got := report.FallbackNarrative(tc.overall)
		for _, w := range tc.want {
			if !strings.Contains(got, w) {
				t.Errorf("FallbackNarrative(%v) = %q, missing %q", tc.overall, got, w)
			}
		}
	}
}
