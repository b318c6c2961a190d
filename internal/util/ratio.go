package util

import "github.com/xrash/smetrics"

// Ratio is the normalized Levenshtein similarity in [0,1] where a substitution
// costs two edits, so identical strings score 1 and disjoint ones approach 0.
// Two empty strings are identical; one empty side scores 0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	total := len(a) + len(b)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return float64(total-dist) / float64(total)
}

// PartialRatio scores the shorter string against every equally long window of
// the longer one and keeps the best Ratio.
func PartialRatio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return Ratio(a, b)
	}

	needle := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		score := Ratio(needle, string(long[i:i+len(short)]))
		if score > best {
			best = score
			if best == 1 {
				break
			}
		}
	}
	return best
}
