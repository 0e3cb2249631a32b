// Package scoring holds the report-time scoring policy: score bands, priority
// tiers with the relative bump pass, finding severity, quick-win projection,
// and action de-duplication. It is pure and imports nothing from internal/
// except the safe-extraction helpers, so it can be tested in isolation.
package scoring

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default scoring constants.
const (
	DefaultGapBenchmark        = 70
	DefaultExcellenceBenchmark = 80
	DefaultGapClosurePercent   = 50
)

// Config carries the tunable scoring constants. The zero value is not usable;
// start from DefaultConfig.
//
// YAML shape:
//
//	gap_benchmark: 70
//	excellence_benchmark: 80
//	gap_closure_percent: 50
type Config struct {
	// GapBenchmark is the reference score for gap tables and the tier bump.
	GapBenchmark float64 `yaml:"gap_benchmark" json:"gap_benchmark"`
	// ExcellenceBenchmark is the default quick-win projection target.
	ExcellenceBenchmark float64 `yaml:"excellence_benchmark" json:"excellence_benchmark"`
	// GapClosurePercent is the share of the gap a quick win is assumed to close.
	GapClosurePercent float64 `yaml:"gap_closure_percent" json:"gap_closure_percent"`
}

// DefaultConfig returns the standard constants (70 / 80 / 50%).
func DefaultConfig() Config {
	return Config{
		GapBenchmark:        DefaultGapBenchmark,
		ExcellenceBenchmark: DefaultExcellenceBenchmark,
		GapClosurePercent:   DefaultGapClosurePercent,
	}
}

// Validate checks every constant is within (0, 100] and reports all
// violations at once, in field order.
func (c Config) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"gap_benchmark", c.GapBenchmark},
		{"excellence_benchmark", c.ExcellenceBenchmark},
		{"gap_closure_percent", c.GapClosurePercent},
	} {
		if f.v <= 0 || f.v > 100 {
			errs = append(errs, fmt.Errorf("scoring config: %s=%v out of range (0,100]", f.name, f.v))
		}
	}
	return errors.Join(errs...)
}

// ParseConfig decodes a YAML override on top of DefaultConfig. Keys absent
// from the document keep their defaults; unknown keys are rejected.
func ParseConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("scoring config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML override file. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("scoring config: %w", err)
	}
	return ParseConfig(raw)
}
