package normalize

import (
	"strings"
	"unicode/utf8"

	"monito/internal/util"
)

// StandardizeSuppliers groups supplier spellings that are near-identical and
// rewrites every product to the longest spelling of its group. It returns
// the rewrites applied, old to new.
func (n *Normalizer) StandardizeSuppliers(products []Product) map[string]string {
	mapping := map[string]string{}
	if !n.cfg.EnableFuzzy {
		return mapping
	}

	var distinct []string
	seen := map[string]bool{}
	for _, p := range products {
		if p.Supplier != "" && !seen[p.Supplier] {
			seen[p.Supplier] = true
			distinct = append(distinct, p.Supplier)
		}
	}

	grouped := make([]bool, len(distinct))
	for i, seed := range distinct {
		if grouped[i] {
			continue
		}
		group := []string{seed}
		for j := i + 1; j < len(distinct); j++ {
			if grouped[j] {
				continue
			}
			if util.Ratio(strings.ToLower(seed), strings.ToLower(distinct[j])) >= n.cfg.SupplierSimilarityThreshold {
				grouped[j] = true
				group = append(group, distinct[j])
			}
		}
		canonical := group[0]
		for _, s := range group[1:] {
			if utf8.RuneCountInString(s) > utf8.RuneCountInString(canonical) {
				canonical = s
			}
		}
		for _, s := range group {
			if s != canonical {
				mapping[s] = canonical
			}
		}
	}

	for i := range products {
		if to, ok := mapping[products[i].Supplier]; ok {
			products[i].Supplier = to
		}
	}
	return mapping
}
