package pipeline

import (
	"strings"

	"monito/internal/util"
)

type DetectResult struct {
	IsPriceList bool
	Score       float64
	Reason      string
}

var detectKeywords = []string{"harga", "price", "pricelist", "daftar harga", "penawaran", "quotation", "katalog", "stok"}

// DetectPriceList scores whether a message looks like a supplier price list.
func DetectPriceList(subject, text, html string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	priceHits := countPriceLines(text)
	if priceHits >= 2 {
		score += 0.4
	} else if priceHits == 1 {
		score += 0.2
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") || strings.HasSuffix(ln, ".csv") || strings.HasSuffix(ln, ".pdf") {
			score += 0.25
			break
		}
	}

	if strings.Contains(html, "<table") {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isPriceList := score >= 0.45
	reason := "rules_negative"
	if isPriceList {
		reason = "rules_positive"
	}

	return DetectResult{IsPriceList: isPriceList, Score: score, Reason: reason}
}

func countPriceLines(text string) int {
	count := 0
	for _, line := range splitLines(text) {
		if reLetters.MatchString(line) {
			if _, ok := util.FindPriceToken(line); ok {
				count++
			}
		}
	}
	return count
}
