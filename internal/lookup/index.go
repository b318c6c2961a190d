package lookup

import (
	"monito/internal"
	"monito/internal/util"
)

// Index groups stored products by normalized name key and by name token.
type Index struct {
	ProductsByID map[int]internal.StoredProduct
	ByKey        map[string][]internal.StoredProduct
	TokenToIDs   map[string]map[int]struct{}
	KeyByID      map[int]string
	TokensByID   map[int][]string
	orderedIDs   []int
}

func BuildIndex(products []internal.StoredProduct) *Index {
	idx := &Index{
		ProductsByID: map[int]internal.StoredProduct{},
		ByKey:        map[string][]internal.StoredProduct{},
		TokenToIDs:   map[string]map[int]struct{}{},
		KeyByID:      map[int]string{},
		TokensByID:   map[int][]string{},
	}

	for _, p := range products {
		if _, seen := idx.ProductsByID[p.ID]; !seen {
			idx.orderedIDs = append(idx.orderedIDs, p.ID)
		}
		idx.ProductsByID[p.ID] = p

		key := p.NormalizedKey
		if key == "" {
			key = util.NormalizeKey(p.Name)
		}
		idx.KeyByID[p.ID] = key
		idx.ByKey[key] = append(idx.ByKey[key], p)

		tokens := util.Tokenize(p.Name)
		idx.TokensByID[p.ID] = tokens
		for _, token := range tokens {
			if _, ok := idx.TokenToIDs[token]; !ok {
				idx.TokenToIDs[token] = map[int]struct{}{}
			}
			idx.TokenToIDs[token][p.ID] = struct{}{}
		}
	}

	return idx
}

// Len is the number of distinct products in the index.
func (idx *Index) Len() int {
	return len(idx.orderedIDs)
}

// candidates returns the ids sharing at least one token with the query, in
// insertion order. With no shared token every product is a candidate so
// misspelled queries still reach the bigram score.
func (idx *Index) candidates(tokens []string) []int {
	hit := map[int]struct{}{}
	for _, t := range tokens {
		for id := range idx.TokenToIDs[t] {
			hit[id] = struct{}{}
		}
	}
	if len(hit) == 0 {
		return idx.orderedIDs
	}
	out := make([]int, 0, len(hit))
	for _, id := range idx.orderedIDs {
		if _, ok := hit[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
