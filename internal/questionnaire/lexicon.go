package questionnaire

// scaleLabels maps a 1–5 rating to its display label. Index 0 is unused.
var scaleLabels = [...]string{"", "Poor", "Fair", "Good", "Very Good", "Excellent"}

// ScaleLabel returns the human label for a 1–5 rating, or "" when the rating
// is out of range.
func ScaleLabel(rating int) string {
	if rating < 1 || rating > 5 {
		return ""
	}
	return scaleLabels[rating]
}
