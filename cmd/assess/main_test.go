package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nyashahama/business-health-backend/internal/questionnaire"
	"github.com/nyashahama/business-health-backend/internal/report"
)

// execute runs the root command with args and returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{
		"ENV", "PORT", "SCORING_CONFIG", "NARRATIVE_TIMEOUT", "REPORT_QUICK_WIN_LIMIT",
		"ANTHROPIC_API_KEY", "DEEPSEEK_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name string, v any) string {
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

func submission() map[string]any {
	sub := make(map[string]any, len(questionnaire.Categories)+1)
	for _, id := range questionnaire.Categories {
		sub[string(id)] = map[string]any{}
	}
	sub["created_at"] = "2025-03-14T09:30:00Z"
	sub["strategy"] = map[string]any{
		"business_goals_plan":    2,
		"sales_growth_past_year": 10,
		"target_sales_growth":    25,
	}
	return sub
}

// transformed runs the transform command and returns the path of its output.
func transformed(t *testing.T, dir string) string {
	t.Helper()
	out, err := execute(t, "transform", writeFile(t, dir, "submission.json", submission()), "--profile", "cp-9")
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	path := filepath.Join(dir, "responses.json")
	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ─── transform ────────────────────────────────────────────────────────────────

func TestTransform(t *testing.T) {
	dir := t.TempDir()
	raw, err := os.ReadFile(transformed(t, dir))
	if err != nil {
		t.Fatal(err)
	}

	var resp questionnaire.QuestionnaireResponses
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if resp.Metadata.CompanyProfileID != "cp-9" {
		t.Errorf("company_profile_id = %q", resp.Metadata.CompanyProfileID)
	}
	if resp.Metadata.ResponseID == "" {
		t.Error("response_id not stamped")
	}
}

func TestTransform_RequiresProfile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "submission.json", submission())
	_, err := execute(t, "transform", path)
	if !errors.Is(err, questionnaire.ErrMissingProfile) {
		t.Errorf("err = %v, want ErrMissingProfile", err)
	}
}

func TestTransform_MissingCategory(t *testing.T) {
	sub := submission()
	delete(sub, "risk")
	path := writeFile(t, t.TempDir(), "submission.json", sub)

	_, err := execute(t, "transform", path, "--profile", "cp-9")
	if !errors.Is(err, questionnaire.ErrMissingCategory) {
		t.Errorf("err = %v, want ErrMissingCategory", err)
	}
}

// ─── validate ─────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	path := transformed(t, dir)

	out, err := execute(t, "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, `"valid": true`) {
		t.Errorf("output = %s", out)
	}
}

func TestValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	raw, err := os.ReadFile(transformed(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	var resp questionnaire.QuestionnaireResponses
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatal(err)
	}
	resp.Metadata.ResponseID = ""
	path := writeFile(t, dir, "bad.json", resp)

	out, err := execute(t, "validate", path)
	if !errors.Is(err, errInvalidResponses) {
		t.Errorf("err = %v, want errInvalidResponses", err)
	}
	if !strings.Contains(out, "missing response_id") {
		t.Errorf("output = %s", out)
	}
}

// ─── report ───────────────────────────────────────────────────────────────────

func TestReport_HTMLToStdout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "acme.json", report.ReportInput{
		CompanyName: "Acme",
		Categories:  []report.CategoryInsight{{Name: "Sales", Score: 45}},
	})

	out, err := execute(t, "report", path, "--html", "--no-ai")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("not an HTML document: %.40s", out)
	}
	if !strings.Contains(out, "Acme Business Health Assessment") {
		t.Error("title missing")
	}
}

func TestReport_FromResponses(t *testing.T) {
	dir := t.TempDir()
	path := transformed(t, dir)

	out, err := execute(t, "report", path, "--from-responses", "--company", "Acme", "--no-ai")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if rep.Title != "Acme Business Health Assessment" {
		t.Errorf("title = %q", rep.Title)
	}
}

func TestReport_Batch(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "reports")
	good := writeFile(t, in, "acme.json", report.ReportInput{
		Categories: []report.CategoryInsight{{Name: "Sales", Score: 45}},
	})
	empty := writeFile(t, in, "empty.json", report.ReportInput{CompanyName: "Empty"})

	stdout, err := execute(t, "report", good, empty, "--out", out, "--no-ai", "--workers", "2")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 reports failed") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(stdout, "FAIL "+empty) {
		t.Errorf("summary = %s", stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "acme.report.json")); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestReport_MultipleInputsNeedOut(t *testing.T) {
	_, err := execute(t, "report", "a.json", "b.json", "--no-ai")
	if err == nil || !strings.Contains(err.Error(), "--out") {
		t.Errorf("err = %v", err)
	}
}

func TestReport_DuplicateOutputNames(t *testing.T) {
	in := report.ReportInput{Categories: []report.CategoryInsight{{Name: "Sales", Score: 45}}}
	root := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.Mkdir(filepath.Join(root, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	first := writeFile(t, filepath.Join(root, "a"), "acme.json", in)
	second := writeFile(t, filepath.Join(root, "b"), "acme.json", in)
	out := filepath.Join(root, "reports")

	_, err := execute(t, "report", first, second, "--out", out, "--no-ai")
	if err == nil || !strings.Contains(err.Error(), "acme.report.json") {
		t.Errorf("err = %v, want duplicate output error", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output directory created despite rejected batch: %v", err)
	}
}

func TestReport_RetriesFlag(t *testing.T) {
	cmd := newRootCmd()
	sub, _, err := cmd.Find([]string{"report"})
	if err != nil {
		t.Fatal(err)
	}
	fl := sub.Flags().Lookup("retries")
	if fl == nil || fl.DefValue != "1" {
		t.Fatalf("retries flag = %+v", fl)
	}
}
