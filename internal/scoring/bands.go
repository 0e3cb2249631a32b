package scoring

// ─── SCORE BANDS ──────────────────────────────────────────────────────────────

// Band boundaries over a 0–100 score, lower bound inclusive.
const (
	excellenceFloor  = 80
	proficiencyFloor = 70
	attentionFloor   = 60
	concernFloor     = 40
)

// BandLevel orders the five score bands, worst first.
type BandLevel int

const (
	BandCritical BandLevel = iota
	BandConcern
	BandAttention
	BandProficiency
	BandExcellence
)

// Band is the Score Classifier's output: a label, a recommended posture, and
// the styling tokens the template layer uses.
type Band struct {
	Level      BandLevel `json:"level"`
	Label      string    `json:"label"`
	Posture    string    `json:"posture"`
	Color      string    `json:"color"`
	Background string    `json:"background"`
	// Floor is the band's inclusive lower bound.
	Floor float64 `json:"floor"`
}

var bands = [...]Band{
	BandCritical:    {BandCritical, "Critical", "Immediate Focus", "#b91c1c", "#fee2e2", 0},
	BandConcern:     {BandConcern, "Concern", "Prioritize Improvement", "#c2410c", "#ffedd5", concernFloor},
	BandAttention:   {BandAttention, "Attention", "Targeted Improvement", "#a16207", "#fef9c3", attentionFloor},
	BandProficiency: {BandProficiency, "Proficiency", "Optimize & Refine", "#1d4ed8", "#dbeafe", proficiencyFloor},
	BandExcellence:  {BandExcellence, "Excellence", "Monitor & Maintain", "#15803d", "#dcfce7", excellenceFloor},
}

// bandLevel places a score on the shared five-step ladder used by both the
// classifier and the tier engine.
func bandLevel(score float64) BandLevel {
	switch {
	case score >= excellenceFloor:
		return BandExcellence
	case score >= proficiencyFloor:
		return BandProficiency
	case score >= attentionFloor:
		return BandAttention
	case score >= concernFloor:
		return BandConcern
	default:
		return BandCritical
	}
}

// Classify returns the score band for a 0–100 score.
func Classify(score float64) Band {
	return bands[bandLevel(score)]
}

// NextBand returns the band one step better than b, or b itself at the top.
func NextBand(b Band) Band {
	if b.Level >= BandExcellence {
		return b
	}
	return bands[b.Level+1]
}

// ─── SEVERITY ─────────────────────────────────────────────────────────────────

// Severity labels a weakness by its category's score. Its thresholds are
// independent of the score bands.
type Severity string

const (
	SeverityCritical    Severity = "Critical Gap"
	SeveritySignificant Severity = "Significant Gap"
	SeverityImprovement Severity = "Area for Improvement"
	SeverityBelowTarget Severity = "Below Target"
)

// SeverityFor maps a category score onto a finding severity.
func SeverityFor(categoryScore float64) Severity {
	switch {
	case categoryScore <= 20:
		return SeverityCritical
	case categoryScore < 40:
		return SeveritySignificant
	case categoryScore < 60:
		return SeverityImprovement
	default:
		return SeverityBelowTarget
	}
}
