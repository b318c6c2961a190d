package pricing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"monito/internal/util"
)

// Regex fragments shared by the strategies. Input is already cleaned and
// lowercased, so no case folding is needed here.
const (
	numPart    = `(\d[\d.,]*)`
	suffixPart = `(?:\s*(ribu|rb|juta|jt|r|j|k|m|b)\b)?`
	wordPart   = `([a-z]+)`
	pctPart    = `(\d+(?:[.,]\d+)?)\s*%`
	qualPart   = `(min(?:imal|imum)?|max(?:imal|imum)?|maks(?:imal)?)\.?`
)

// outcome is the result of one strategy: either a matched price or the reason
// the strategy passed.
type outcome struct {
	price  ParsedPrice
	ok     bool
	reason string
}

func matched(p ParsedPrice) outcome { return outcome{price: p, ok: true} }

func noMatch(format string, args ...any) outcome {
	return outcome{reason: fmt.Sprintf(format, args...)}
}

type strategy struct {
	kind  PriceType
	parse func(text string) outcome
}

// cascade is tried in order; composite shapes come before the bare number
// fallback so "17/15" never degrades into a single price.
var cascade = []strategy{
	{PriceFraction, parseFraction},
	{PriceBulk, parseBulk},
	{PriceRange, parseRange},
	{PriceDiscount, parseDiscount},
	{PriceConditional, parseConditional},
	{PriceUnitPrice, parseUnitPrice},
	{PriceTiered, parseTiered},
	{PriceSingle, parseSingle},
}

var (
	fractionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^` + numPart + suffixPart + `\s*/\s*` + numPart + suffixPart + `$`),
	}
	bulkPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^` + numPart + suffixPart + `\s*(?:@|per|/)\s*` + numPart + `\s*` + wordPart + `$`),
	}
	bulkQtyFirstPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^` + numPart + `\s*` + wordPart + `\s*(?:@|=|:)\s*` + numPart + suffixPart + `$`),
	}
	rangePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^` + numPart + suffixPart + `\s*(?:-|~|to|s/d|sampai|hingga)\s*` + numPart + suffixPart + `(?:\s*(?:/|per)\s*` + wordPart + `)?$`),
	}
	discountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^` + numPart + suffixPart + `\s*\(\s*(?:disc(?:ount)?|diskon|potongan)?\.?\s*:?\s*-?\s*` + pctPart + `\s*(?:off)?\s*\)$`),
		regexp.MustCompile(`^` + numPart + suffixPart + `\s*-\s*` + pctPart + `(?:\s*off)?$`),
		regexp.MustCompile(`^` + numPart + suffixPart + `\s*(?:disc(?:ount)?|diskon|potongan)\.?\s*:?\s*` + pctPart + `$`),
	}
	conditionalQtyFirstPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^` + qualPart + `\s*(\d[\d.,]*)\s*([a-z]+)?\s*(?:=|:|@|->)\s*` + numPart + suffixPart + `$`),
	}
	conditionalPriceFirstPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^` + numPart + suffixPart + `\s*\(?\s*` + qualPart + `\s*(\d[\d.,]*)\s*([a-z]+)?\s*\)?$`),
	}
	unitPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^` + numPart + suffixPart + `\s*(?:/|per)\s*` + wordPart + `$`),
	}
	singleExact  = regexp.MustCompile(`^` + numPart + suffixPart + `$`)
	singleAnywhr = regexp.MustCompile(numPart + suffixPart)
)

// knownUnits are the units accepted after "/" or "per" in a unit price.
var knownUnits = map[string]bool{
	"kg": true, "g": true, "gr": true, "gram": true, "ons": true,
	"l": true, "lt": true, "ltr": true, "liter": true, "ml": true,
	"pcs": true, "pc": true, "piece": true, "buah": true, "biji": true, "bh": true,
	"pack": true, "pak": true, "box": true, "dus": true, "karton": true,
	"btl": true, "botol": true, "bottle": true, "ikat": true, "bunch": true,
	"sisir": true, "ekor": true, "lusin": true, "dozen": true, "tray": true,
	"karung": true, "sack": true, "bag": true, "kaleng": true, "can": true,
	"sachet": true, "roll": true, "meter": true, "porsi": true, "portion": true,
	"slice": true, "loaf": true, "unit": true, "set": true, "each": true, "ea": true,
}

func firstMatch(patterns []*regexp.Regexp, text string) []string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m
		}
	}
	return nil
}

// amount converts a captured number with its optional suffix.
func amount(raw, suffix string) (float64, bool) {
	return util.ConvertToNumber(raw, suffix)
}

// pairAmounts converts "A<sa> / B<sb>" style pairs where a bare left side
// borrows the right side's suffix. With ordered set the borrow only happens
// when it keeps A below B, so "15-20k" reads as 15000-20000 while "15000-20k"
// stays as written.
func pairAmounts(rawA, sufA, rawB, sufB string, ordered bool) (float64, float64, bool) {
	b, ok := amount(rawB, sufB)
	if !ok {
		return 0, 0, false
	}
	if sufA == "" && sufB != "" {
		bareA, okA := amount(rawA, "")
		bareB, okB := amount(rawB, "")
		if okA && okB && (!ordered || bareA <= bareB) {
			return bareA * util.SuffixMultiplier(sufB), b, true
		}
	}
	a, ok := amount(rawA, sufA)
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

func parseFraction(text string) outcome {
	m := firstMatch(fractionPatterns, text)
	if m == nil {
		return noMatch("no A/B expression")
	}
	a, b, ok := pairAmounts(m[1], m[2], m[3], m[4], false)
	if !ok {
		return noMatch("fraction operands are not numeric")
	}
	return matched(ParsedPrice{
		Type:           PriceFraction,
		PrimaryPrice:   util.FloatPtr(a),
		SecondaryPrice: util.FloatPtr(b),
	})
}

func parseBulk(text string) outcome {
	if m := firstMatch(bulkPricePatterns, text); m != nil {
		price, ok := amount(m[1], m[2])
		qty, okQ := amount(m[3], "")
		if !ok || !okQ {
			return noMatch("bulk operands are not numeric")
		}
		return bulkPrice(price, qty, m[4])
	}
	if m := firstMatch(bulkQtyFirstPatterns, text); m != nil {
		qty, okQ := amount(m[1], "")
		price, ok := amount(m[3], m[4])
		if !ok || !okQ {
			return noMatch("bulk operands are not numeric")
		}
		return bulkPrice(price, qty, m[2])
	}
	return noMatch("no price@quantity expression")
}

func bulkPrice(price, qty float64, unit string) outcome {
	if qty <= 0 {
		return noMatch("bulk quantity must be positive")
	}
	return matched(ParsedPrice{
		Type:         PriceBulk,
		PrimaryPrice: util.FloatPtr(price),
		Quantity:     util.FloatPtr(qty),
		QuantityUnit: unit,
		Conditions:   []string{fmt.Sprintf("per %s %s", formatQty(qty), unit)},
	})
}

func parseRange(text string) outcome {
	m := firstMatch(rangePatterns, text)
	if m == nil {
		return noMatch("no A-B expression")
	}
	lo, hi, ok := pairAmounts(m[1], m[2], m[3], m[4], true)
	if !ok {
		return noMatch("range bounds are not numeric")
	}
	p := ParsedPrice{
		Type:         PriceRange,
		PrimaryPrice: util.FloatPtr((lo + hi) / 2),
		MinPrice:     util.FloatPtr(lo),
		MaxPrice:     util.FloatPtr(hi),
	}
	if m[5] != "" {
		p.Conditions = []string{"per " + m[5]}
	}
	return matched(p)
}

func parseDiscount(text string) outcome {
	m := firstMatch(discountPatterns, text)
	if m == nil {
		return noMatch("no discount expression")
	}
	price, ok := amount(m[1], m[2])
	if !ok {
		return noMatch("discounted price is not numeric")
	}
	pct, ok := amount(m[3], "")
	if !ok || pct <= 0 || pct >= 100 {
		return noMatch("discount %q out of range", m[3])
	}
	return matched(ParsedPrice{
		Type:            PriceDiscount,
		PrimaryPrice:    util.FloatPtr(price),
		SecondaryPrice:  util.FloatPtr(undiscounted(price, pct)),
		DiscountPercent: util.FloatPtr(pct),
		Conditions:      []string{"disc " + formatQty(pct) + "%"},
	})
}

// undiscounted recovers the list price from a discounted one, to cents.
func undiscounted(price, pct float64) float64 {
	rate := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(pct).Div(decimal.NewFromInt(100)))
	v, _ := decimal.NewFromFloat(price).Div(rate).Round(2).Float64()
	return v
}

func parseConditional(text string) outcome {
	var qual, rawQty, unit, rawPrice, suffix string
	if m := firstMatch(conditionalQtyFirstPatterns, text); m != nil {
		qual, rawQty, unit, rawPrice, suffix = m[1], m[2], m[3], m[4], m[5]
	} else if m := firstMatch(conditionalPriceFirstPatterns, text); m != nil {
		rawPrice, suffix, qual, rawQty, unit = m[1], m[2], m[3], m[4], m[5]
	} else {
		return noMatch("no min/max condition")
	}
	price, ok := amount(rawPrice, suffix)
	qty, okQ := amount(rawQty, "")
	if !ok || !okQ {
		return noMatch("conditional operands are not numeric")
	}
	bound := "min"
	if strings.HasPrefix(qual, "ma") {
		bound = "max"
	}
	cond := strings.TrimSpace(bound + " " + formatQty(qty) + " " + unit)
	return matched(ParsedPrice{
		Type:         PriceConditional,
		PrimaryPrice: util.FloatPtr(price),
		Quantity:     util.FloatPtr(qty),
		QuantityUnit: unit,
		Conditions:   []string{cond},
	})
}

func parseUnitPrice(text string) outcome {
	m := firstMatch(unitPricePatterns, text)
	if m == nil {
		return noMatch("no price/unit expression")
	}
	if !knownUnits[m[3]] {
		return noMatch("unknown unit %q", m[3])
	}
	price, ok := amount(m[1], m[2])
	if !ok {
		return noMatch("unit price is not numeric")
	}
	return matched(ParsedPrice{
		Type:         PriceUnitPrice,
		PrimaryPrice: util.FloatPtr(price),
		Unit:         m[3],
	})
}

// parseTiered is registered so the cascade stays complete; no tier grammar
// exists yet.
func parseTiered(string) outcome {
	return noMatch("tiered pricing is not supported")
}

func parseSingle(text string) outcome {
	if m := singleExact.FindStringSubmatch(text); m != nil {
		if v, ok := amount(m[1], m[2]); ok {
			return matched(ParsedPrice{Type: PriceSingle, PrimaryPrice: util.FloatPtr(v)})
		}
	}
	// Prices usually trail the description, so the last standalone number
	// wins. Quantities, percentages and numbers glued to letters are skipped.
	all := singleAnywhr.FindAllStringSubmatchIndex(text, -1)
	for i := len(all) - 1; i >= 0; i-- {
		loc := all[i]
		if !standalonePrice(text, loc[0], loc[1]) {
			continue
		}
		suffix := ""
		if loc[4] >= 0 {
			suffix = text[loc[4]:loc[5]]
		}
		if v, ok := amount(text[loc[2]:loc[3]], suffix); ok {
			return matched(ParsedPrice{Type: PriceSingle, PrimaryPrice: util.FloatPtr(v)})
		}
	}
	if len(all) > 0 {
		return noMatch("only quantities or percentages found")
	}
	return noMatch("no number")
}

// standalonePrice reports whether text[start:end] can be read as a price: it
// is not glued to letters ("1e5", "x2"), not a multiplier operand ("x 2"),
// and not followed by "%" or a unit word ("2 kg").
func standalonePrice(text string, start, end int) bool {
	before := strings.TrimRight(text[:start], " ")
	after := strings.TrimLeft(text[end:], " ")
	if start > 0 && isLetter(text[start-1]) {
		return false
	}
	if end < len(text) && isLetter(text[end]) {
		return false
	}
	if strings.HasSuffix(before, "x") && (len(before) == 1 || !isLetter(before[len(before)-2])) {
		return false
	}
	if strings.HasPrefix(after, "%") {
		return false
	}
	word := after
	if idx := strings.IndexFunc(word, func(r rune) bool { return r < 'a' || r > 'z' }); idx >= 0 {
		word = word[:idx]
	}
	return !knownUnits[word]
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func formatQty(v float64) string {
	return decimal.NewFromFloat(v).String()
}
