package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nyashahama/business-health-backend/internal/questionnaire"
	"github.com/nyashahama/business-health-backend/internal/report"
	"github.com/nyashahama/business-health-backend/internal/scoring"
	"github.com/nyashahama/business-health-backend/internal/worker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ─── Runner ───────────────────────────────────────────────────────────────────

func TestRunner_ResultsInInputOrder(t *testing.T) {
	job := worker.JobFunc(func(_ context.Context, input string) error {
		if input == "bad" {
			return errors.New("bad input")
		}
		return nil
	})
	r := worker.NewRunner(job, worker.RunnerConfig{Workers: 4}, discardLogger())

	inputs := []string{"a", "bad", "c", "d", "e"}
	results := r.Run(context.Background(), inputs)

	if len(results) != len(inputs) {
		t.Fatalf("results = %d, want %d", len(results), len(inputs))
	}
	for i, res := range results {
		if res.Input != inputs[i] {
			t.Errorf("results[%d].Input = %q, want %q", i, res.Input, inputs[i])
		}
		if (res.Err != nil) != (inputs[i] == "bad") {
			t.Errorf("results[%d].Err = %v", i, res.Err)
		}
		if res.Attempts != 1 {
			t.Errorf("results[%d].Attempts = %d, want 1", i, res.Attempts)
		}
	}
}

func TestRunner_BoundedConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	job := worker.JobFunc(func(_ context.Context, _ string) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	})
	r := worker.NewRunner(job, worker.RunnerConfig{Workers: 2}, discardLogger())
	r.Run(context.Background(), []string{"1", "2", "3", "4", "5", "6"})

	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want ≤ 2", p)
	}
}

func TestRunner_RetriesThenSucceeds(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	job := worker.JobFunc(func(_ context.Context, _ string) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	r := worker.NewRunner(job, worker.RunnerConfig{Workers: 1, MaxRetries: 3, Backoff: time.Millisecond}, discardLogger())

	res := r.Run(context.Background(), []string{"x"})[0]
	if res.Err != nil || res.Attempts != 3 {
		t.Errorf("got err=%v attempts=%d, want nil/3", res.Err, res.Attempts)
	}
}

func TestRunner_JobTimeoutApplied(t *testing.T) {
	job := worker.JobFunc(func(ctx context.Context, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	r := worker.NewRunner(job, worker.RunnerConfig{JobTimeout: 20 * time.Millisecond}, discardLogger())

	res := r.Run(context.Background(), []string{"slow"})[0]
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", res.Err)
	}
}

func TestRunner_PanicBecomesError(t *testing.T) {
	job := worker.JobFunc(func(_ context.Context, input string) error {
		if input == "boom" {
			panic("kaboom")
		}
		return nil
	})
	r := worker.NewRunner(job, worker.RunnerConfig{Workers: 1}, discardLogger())

	results := r.Run(context.Background(), []string{"boom", "fine"})
	if results[0].Err == nil || !strings.Contains(results[0].Err.Error(), "kaboom") {
		t.Errorf("panic not reported: %v", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("later input affected by panic: %v", results[1].Err)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	job := worker.JobFunc(func(_ context.Context, _ string) error {
		called = true
		return nil
	})
	r := worker.NewRunner(job, worker.RunnerConfig{Workers: 1}, discardLogger())

	for _, res := range r.Run(ctx, []string{"a", "b"}) {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want Canceled", res.Input, res.Err)
		}
	}
	if called {
		t.Error("job should not run after cancellation")
	}
}

// ─── ReportJob ────────────────────────────────────────────────────────────────

func newAssembler() *report.Assembler {
	return report.NewAssembler(scoring.DefaultConfig(), nil, discardLogger())
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReportJob_WritesReportJSON(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := writeJSON(t, in, "acme.json", report.ReportInput{
		CompanyName: "Acme",
		Categories:  []report.CategoryInsight{{Name: "Sales", Score: 45}},
	})

	job := worker.NewReportJob(newAssembler(), worker.DecodeInsights, out, false, discardLogger())
	if err := job.Run(context.Background(), path); err != nil {
		t.Fatalf("Run: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(out, "acme.report.json"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if rep.Title != "Acme Business Health Assessment" || len(rep.Sections) != 11 {
		t.Errorf("report = %q with %d sections", rep.Title, len(rep.Sections))
	}
}

func TestReportJob_HTMLOnly(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := writeJSON(t, in, "acme.json", report.ReportInput{
		Categories: []report.CategoryInsight{{Name: "Sales", Score: 45}},
	})

	job := worker.NewReportJob(newAssembler(), worker.DecodeInsights, out, true, discardLogger())
	if err := job.Run(context.Background(), path); err != nil {
		t.Fatalf("Run: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(out, "acme.html"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.HasPrefix(string(raw), "<!DOCTYPE html>") {
		t.Errorf("not an HTML document: %.40s", raw)
	}
}

func TestReportJob_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := writeJSON(t, dir, "empty.json", report.ReportInput{CompanyName: "Acme"})
	unknown := filepath.Join(dir, "unknown.json")
	if err := os.WriteFile(unknown, []byte(`{"categories": [], "extra": 1}`), 0o600); err != nil {
		t.Fatal(err)
	}

	job := worker.NewReportJob(newAssembler(), worker.DecodeInsights, dir, false, discardLogger())

	if err := job.Run(context.Background(), empty); !errors.Is(err, report.ErrNoCategories) {
		t.Errorf("empty input: err = %v, want ErrNoCategories", err)
	}
	if err := job.Run(context.Background(), unknown); err == nil {
		t.Error("unknown field should be rejected")
	}
	if err := job.Run(context.Background(), filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestReportJob_FromResponses(t *testing.T) {
	answers := make(map[questionnaire.CategoryID]questionnaire.Answers, len(questionnaire.Categories))
	for _, id := range questionnaire.Categories {
		answers[id] = questionnaire.Answers{}
	}
	answers[questionnaire.CategorySales] = questionnaire.Answers{"sales_process_documented": 1}
	resp, err := questionnaire.Build(context.Background(), questionnaire.Submission{Categories: answers}, "cp-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dir := t.TempDir()
	path := writeJSON(t, dir, "responses.json", resp)

	job := worker.NewReportJob(newAssembler(), worker.DecodeResponses("Acme", "Retail"), dir, true, discardLogger())
	out, err := job.Render(context.Background(), path)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "Document the sales process") {
		t.Error("derived recommendation missing from report")
	}

	resp.Metadata.ResponseID = ""
	bad := writeJSON(t, dir, "bad.json", resp)
	if _, err := job.Render(context.Background(), bad); err == nil || !strings.Contains(err.Error(), "missing response_id") {
		t.Errorf("invalid responses: err = %v", err)
	}
}

func TestReportJob_OutputName(t *testing.T) {
	jsonJob := worker.NewReportJob(nil, worker.DecodeInsights, "", false, discardLogger())
	htmlJob := worker.NewReportJob(nil, worker.DecodeInsights, "", true, discardLogger())

	if got := jsonJob.OutputName("in/acme.json"); got != "acme.report.json" {
		t.Errorf("json name = %q", got)
	}
	if got := htmlJob.OutputName("in/acme.json"); got != "acme.html" {
		t.Errorf("html name = %q", got)
	}
}
