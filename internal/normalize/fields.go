package normalize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"monito/internal/util"
)

// UnitResult is a canonical unit plus its measurable dimension when the unit
// library knows it.
type UnitResult struct {
	FieldResult
	Dimension Dimension `json:"dimension,omitempty"`
}

var (
	unitKeys         = sortedKeys(unitSynonyms)
	gluedEntityToken = regexp.MustCompile(`(?i)^(pt|cv|ud)\.(\S)`)
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Normalizer) NormalizeName(raw string) FieldResult {
	return memo(n.caches.Names, raw, normalizeName)
}

func normalizeName(raw string) FieldResult {
	s := util.CollapseSpaces(raw)
	for {
		stripped := s
		for _, re := range namePrefixes {
			stripped = re.ReplaceAllString(stripped, "")
		}
		stripped = strings.TrimSpace(stripped)
		if stripped == s {
			break
		}
		s = stripped
	}
	if s == "" {
		return FieldResult{}
	}
	for _, syn := range nameSynonyms {
		s = syn.pattern.ReplaceAllString(s, syn.repl)
	}
	return FieldResult{Value: titleCase(util.CollapseSpaces(s)), Confidence: 1}
}

func (n *Normalizer) NormalizeUnit(raw string) UnitResult {
	r := memo(n.caches.Units, raw, n.normalizeUnit)
	out := UnitResult{FieldResult: r}
	if n.cfg.EnableUnitLibrary && r.Value != "" {
		if dim, ok := DimensionOf(r.Value); ok {
			out.Dimension = dim
		}
	}
	return out
}

func (n *Normalizer) normalizeUnit(raw string) FieldResult {
	key := strings.ToLower(util.CollapseSpaces(raw))
	key = strings.TrimPrefix(strings.TrimLeft(key, "/ "), "per ")
	key = strings.TrimRight(key, ". ")
	if key == "" {
		return FieldResult{}
	}
	if canonical, ok := unitSynonyms[key]; ok {
		return FieldResult{Value: canonical, Confidence: 1}
	}
	if n.cfg.EnableFuzzy {
		best, bestKey := 0.0, ""
		for _, k := range unitKeys {
			if r := util.Ratio(key, k); r > best {
				best, bestKey = r, k
			}
		}
		if best >= 0.8 {
			return FieldResult{Value: unitSynonyms[bestKey], Confidence: best}
		}
	}
	return FieldResult{Value: key, Confidence: 0.5}
}

func (n *Normalizer) NormalizeCategory(raw string) FieldResult {
	return memo(n.caches.Categories, raw, n.normalizeCategory)
}

func (n *Normalizer) normalizeCategory(raw string) FieldResult {
	title := titleCase(util.CollapseSpaces(raw))
	if title == "" {
		return FieldResult{}
	}
	if n.cfg.EnableFuzzy {
		lowered := strings.ToLower(title)
		best, canonical := 0.0, ""
		for _, rule := range categoryRules {
			for _, kw := range rule.keywords {
				if s := util.PartialRatio(lowered, kw); s > best {
					best, canonical = s, rule.canonical
				}
			}
		}
		if best >= 0.7 {
			return FieldResult{Value: canonical, Confidence: best}
		}
	}
	return FieldResult{Value: title, Confidence: 1}
}

func (n *Normalizer) NormalizeSupplier(raw string) FieldResult {
	return memo(n.caches.Suppliers, raw, normalizeSupplier)
}

func normalizeSupplier(raw string) FieldResult {
	s := gluedEntityToken.ReplaceAllString(util.CollapseSpaces(raw), "$1. $2")
	words := strings.Fields(s)
	if len(words) == 0 {
		return FieldResult{}
	}
	for len(words) > 1 && isLegalEntity(words[0]) {
		words = words[1:]
	}
	for len(words) > 1 && isLegalEntity(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	name := strings.Trim(strings.Join(words, " "), " ,.")
	return FieldResult{Value: titleCase(name), Confidence: 1}
}

func isLegalEntity(word string) bool {
	return legalEntityTokens[strings.ToLower(strings.Trim(word, ".,"))]
}

// titleCase capitalizes each word except stopwords after the first word,
// unit abbreviations and tokens that start with a digit.
func titleCase(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	caser := cases.Title(language.Und)
	for i, w := range words {
		lw := strings.ToLower(w)
		first, _ := utf8.DecodeRuneInString(w)
		switch {
		case i > 0 && titleStopwords[lw]:
			words[i] = lw
		case lowercaseTokens[lw], unicode.IsDigit(first):
			words[i] = lw
		default:
			words[i] = caser.String(w)
		}
	}
	return strings.Join(words, " ")
}
