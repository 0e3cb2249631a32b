package questionnaire

import (
	"math"

	"github.com/nyashahama/business-health-backend/internal/safe"
)

// Answers is one category's raw answer bundle: a flat object keyed by raw
// field name. Every read goes through the safe-extraction policy, so absent
// or wrong-typed fields yield the typed zero value.
type Answers map[string]any

// Number returns the field as a finite number, or 0.
func (a Answers) Number(key string) float64 { return safe.Number(a[key]) }

// Bool returns the field as a boolean, or false.
func (a Answers) Bool(key string) bool { return safe.Bool(a[key]) }

// String returns the field as a string, or "".
func (a Answers) String(key string) string { return safe.String(a[key], "") }

// scaleAnswer reads a 1–5 rating. Fractional input is rounded; anything
// absent or out of range is clamped, so a missing rating reads as 1.
func scaleAnswer(a Answers, key string) float64 {
	return safe.Clamp(math.Round(a.Number(key)), 1, 5)
}
