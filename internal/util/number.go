package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reNonNumeric = regexp.MustCompile(`[^0-9.,]`)
	reHasDigit   = regexp.MustCompile(`\d`)
	pricePattern = regexp.MustCompile(`(?i)(?:rp\.?|idr|usd|\$)?\s*\d[\d.,]*\s*(?:ribu|rb|juta|jt|k)?\b(?:\s*(?:,-|\.-))?(?:\s*(?:/|per)\s*[a-z]+\b)?`)
)

// ConvertToNumber turns a locale-ambiguous numeric string such as "15.000,50",
// "1,234.5" or "15" (with suffix "k") into a float. When both separators are
// present the later one is the decimal point; a lone separator is decimal only
// when it occurs once and is followed by one or two digits.
func ConvertToNumber(text, suffix string) (float64, bool) {
	clean := reNonNumeric.ReplaceAllString(text, "")
	clean = strings.TrimRight(clean, ".,")
	if !reHasDigit.MatchString(clean) {
		return 0, false
	}

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		clean = resolveSeparator(clean, ",")
	case lastDot >= 0:
		clean = resolveSeparator(clean, ".")
	}

	value, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return value * SuffixMultiplier(suffix), true
}

func resolveSeparator(s, sep string) string {
	if strings.Count(s, sep) == 1 {
		tail := len(s) - strings.Index(s, sep) - 1
		if tail >= 1 && tail <= 2 {
			return strings.Replace(s, sep, ".", 1)
		}
	}
	return strings.ReplaceAll(s, sep, "")
}

// SuffixMultiplier maps shorthand magnitude suffixes (k, rb/ribu, jt/juta, m, b)
// to their multipliers. Unknown or empty suffixes multiply by one.
func SuffixMultiplier(suffix string) float64 {
	switch strings.ToLower(strings.TrimSpace(suffix)) {
	case "k", "r", "rb", "ribu":
		return 1_000
	case "j", "jt", "juta", "m":
		return 1_000_000
	case "b":
		return 1_000_000_000
	default:
		return 1
	}
}

// FindPriceToken returns the last price-looking fragment of a line ("Rp 15.000",
// "25k/kg"), or ok=false when the line has none.
func FindPriceToken(line string) (string, bool) {
	line = strings.ReplaceAll(line, "\u00A0", " ")
	matches := pricePattern.FindAllStringIndex(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		raw := strings.TrimSpace(line[m[0]:m[1]])
		if raw == "" || !reHasDigit.MatchString(raw) {
			continue
		}
		return raw, true
	}
	return "", false
}
