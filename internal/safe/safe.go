// Package safe implements the extraction policy used everywhere caller-supplied
// data is read: a typed fallback replaces any value that is absent, of the
// wrong type, or not a finite number. Nothing in this package returns an error.
package safe

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float returns v, or 0 when v is NaN or ±Inf.
func Float(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Number coerces v to a finite float64. Numeric strings are parsed, booleans
// map to 0/1. Everything else yields 0.
func Number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return Float(n)
	case float32:
		return Float(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return Float(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return Float(f)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// String returns v when it is a string, the decimal form of a finite number,
// or def otherwise.
func String(v any, def string) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return def
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case json.Number:
		return s.String()
	default:
		return def
	}
}

// Bool reads v as a boolean. Strings "true", "yes", "1" (any case) and
// non-zero numbers are true.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	case float64, float32, int, int32, int64, json.Number:
		return Number(b) != 0
	default:
		return false
	}
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	v = Float(v)
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Divide returns num/den, or 0 when den is not strictly positive.
func Divide(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return Float(num / den)
}

// Clamp constrains v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	v = Float(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
