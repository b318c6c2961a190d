package normalize

import "unicode/utf8"

// QualityScore rates how complete and trustworthy a product record is.
func QualityScore(p Product) float64 {
	score := 0.0
	if l := utf8.RuneCountInString(p.Name); l > 3 {
		score += 0.30
		if l > 10 {
			score += 0.10
		}
	}
	if p.Price != nil {
		score += 0.25
	}
	if p.Unit != "" {
		score += 0.20
		if p.UnitConfidence != nil && *p.UnitConfidence > 0.8 {
			score += 0.05
		}
	}
	if p.Category != "" {
		score += 0.15
	}
	if p.Supplier != "" {
		score += 0.10
	}
	score += confidenceOf(p) * 0.10
	return min(score, 1.0)
}
