package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nyashahama/business-health-backend/internal/config"
	"github.com/nyashahama/business-health-backend/internal/scoring"
)

// clearEnv blanks every key the loader reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ENV",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
		"DEEPSEEK_API_KEY", "DEEPSEEK_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL",
		"NARRATIVE_TIMEOUT", "SCORING_CONFIG", "REPORT_QUICK_WIN_LIMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Port != "8080" || c.Env != "development" {
		t.Errorf("server = %q/%q", c.Port, c.Env)
	}
	if c.NarrativeTimeout != 45*time.Second {
		t.Errorf("NarrativeTimeout = %s", c.NarrativeTimeout)
	}
	if c.QuickWinLimit != 5 {
		t.Errorf("QuickWinLimit = %d", c.QuickWinLimit)
	}
	if c.Scoring != scoring.DefaultConfig() {
		t.Errorf("Scoring = %+v", c.Scoring)
	}
	if c.HasNarrator() {
		t.Error("HasNarrator should be false with no keys")
	}
	if c.DeepSeekModel != "deepseek-chat" || c.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("models = %q/%q", c.DeepSeekModel, c.GeminiModel)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("NARRATIVE_TIMEOUT", "20")
	t.Setenv("REPORT_QUICK_WIN_LIMIT", "3")

	c, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Port != "9090" || c.Env != "production" {
		t.Errorf("server = %q/%q", c.Port, c.Env)
	}
	if c.NarrativeTimeout != 20*time.Second {
		t.Errorf("plain integer timeout = %s, want 20s", c.NarrativeTimeout)
	}
	if c.QuickWinLimit != 3 {
		t.Errorf("QuickWinLimit = %d", c.QuickWinLimit)
	}
	if !c.HasNarrator() {
		t.Error("HasNarrator should be true with a Gemini key")
	}
}

func TestFromEnv_DurationSyntax(t *testing.T) {
	clearEnv(t)
	t.Setenv("NARRATIVE_TIMEOUT", "1m30s")

	c, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.NarrativeTimeout != 90*time.Second {
		t.Errorf("NarrativeTimeout = %s", c.NarrativeTimeout)
	}
}

func TestFromEnv_ScoringFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("gap_benchmark: 65\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCORING_CONFIG", path)

	c, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Scoring.GapBenchmark != 65 || c.Scoring.ExcellenceBenchmark != 80 {
		t.Errorf("Scoring = %+v", c.Scoring)
	}
}

func TestFromEnv_CollectsEveryError(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "prod")
	t.Setenv("PORT", "http")
	t.Setenv("NARRATIVE_TIMEOUT", "soon")
	t.Setenv("REPORT_QUICK_WIN_LIMIT", "0")
	t.Setenv("SCORING_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := config.FromEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"ENV", "PORT", "NARRATIVE_TIMEOUT", "REPORT_QUICK_WIN_LIMIT", "SCORING_CONFIG"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}
