// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing else reads os.Getenv directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nyashahama/business-health-backend/internal/scoring"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port string // default "8080"
	Env  string // "development" | "staging" | "production"

	// ── Anthropic ─────────────────────────────────────────────────────────────
	AnthropicAPIKey string
	AnthropicModel  string // default "claude-sonnet-4-5"

	// ── DeepSeek ──────────────────────────────────────────────────────────────
	DeepSeekAPIKey string
	DeepSeekModel  string // default "deepseek-chat"

	// ── Gemini ────────────────────────────────────────────────────────────────
	GeminiAPIKey string
	GeminiModel  string // default "gemini-2.5-flash"

	// ── Report ────────────────────────────────────────────────────────────────
	// NarrativeTimeout bounds one executive-summary call across all providers.
	NarrativeTimeout time.Duration // default 45s
	QuickWinLimit    int           // default 5

	// Scoring holds the band/bump/projection constants, read from the YAML
	// file named by SCORING_CONFIG when set.
	Scoring     scoring.Config
	ScoringPath string
}

// Load reads all environment variables and returns a validated Config.
// It loads a .env file from the working directory when present, so plain
// `go run ./cmd/api` works in development. Real environment variables always
// take precedence over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	var errs []error

	c := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ScoringPath:     os.Getenv("SCORING_CONFIG"),
	}

	var err error
	if c.NarrativeTimeout, err = getEnvAsDuration("NARRATIVE_TIMEOUT", 45*time.Second); err != nil {
		errs = append(errs, err)
	}
	if c.QuickWinLimit, err = getEnvAsInt("REPORT_QUICK_WIN_LIMIT", 5); err != nil {
		errs = append(errs, err)
	}
	if c.Scoring, err = scoring.LoadConfig(c.ScoringPath); err != nil {
		errs = append(errs, fmt.Errorf("SCORING_CONFIG: %w", err))
	}

	errs = append(errs, c.validate())
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Env {
	case "development", "staging", "production":
	default:
		errs = append(errs, fmt.Errorf("ENV must be development, staging or production, got %q", c.Env))
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a TCP port number, got %q", c.Port))
	}
	if c.NarrativeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("NARRATIVE_TIMEOUT must be positive, got %s", c.NarrativeTimeout))
	}
	if c.QuickWinLimit <= 0 {
		errs = append(errs, fmt.Errorf("REPORT_QUICK_WIN_LIMIT must be positive, got %d", c.QuickWinLimit))
	}

	return errors.Join(errs...)
}

// HasNarrator reports whether any AI provider key is configured. With none,
// every report uses the fallback narrative.
func (c *Config) HasNarrator() bool {
	return c.AnthropicAPIKey != "" || c.DeepSeekAPIKey != "" || c.GeminiAPIKey != ""
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer: %q", key, valueStr)
	}
	return value, nil
}

// getEnvAsDuration accepts Go duration syntax ("30s", "2m") or a plain
// integer number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second, nil
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: not a duration: %q", key, valueStr)
	}
	return d, nil
}
