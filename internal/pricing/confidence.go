package pricing

import "strings"

var typeWeights = map[PriceType]float64{
	PriceSingle:      0.9,
	PriceUnitPrice:   0.85,
	PriceBulk:        0.85,
	PriceRange:       0.8,
	PriceFraction:    0.8,
	PriceDiscount:    0.75,
	PriceConditional: 0.7,
}

func confidence(p ParsedPrice, explicitCurrency bool, original string) float64 {
	weight, ok := typeWeights[p.Type]
	if !ok {
		weight = 0.5
	}

	completeness := 0.0
	if p.PrimaryPrice != nil {
		completeness += 0.4
	}
	if p.Currency != "" {
		completeness += 0.2
	}
	if p.Unit != "" || p.QuantityUnit != "" {
		completeness += 0.2
	}
	if len(p.Conditions) > 0 {
		completeness += 0.2
	}

	score := weight*0.5 + completeness*0.2
	if explicitCurrency {
		score += 0.1
	}
	if len(strings.Fields(original)) > 1 {
		score += 0.05
	}
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}
