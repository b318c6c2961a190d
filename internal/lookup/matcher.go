package lookup

import (
	"math"
	"sort"

	"monito/internal"
	"monito/internal/util"
)

const (
	diceWeight    = 0.65
	overlapWeight = 0.35
)

// Match is one search hit.
type Match struct {
	Product internal.StoredProduct `json:"product"`
	Score   float64                `json:"score"`
	Exact   bool                   `json:"exact"`
}

type Matcher struct {
	index    *Index
	minScore float64
}

func NewMatcher(products []internal.StoredProduct, minScore float64) *Matcher {
	return &Matcher{index: BuildIndex(products), minScore: minScore}
}

// Search ranks stored products against a free-text query. Exact key hits
// score 1; the rest blend bigram similarity with query-token coverage. Ties
// on score go to the cheaper product.
func (m *Matcher) Search(query string, limit int) []Match {
	key := util.NormalizeKey(query)
	if key == "" || m.index.Len() == 0 {
		return nil
	}
	queryTokens := util.Tokenize(query)

	var out []Match
	for _, id := range m.index.candidates(queryTokens) {
		p := m.index.ProductsByID[id]
		prodKey := m.index.KeyByID[id]
		if prodKey == key {
			out = append(out, Match{Product: p, Score: 1, Exact: true})
			continue
		}
		score := scoreName(key, queryTokens, prodKey, m.index.TokensByID[id])
		if score < m.minScore {
			continue
		}
		out = append(out, Match{Product: p, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return priceOf(out[i].Product) < priceOf(out[j].Product)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func scoreName(queryKey string, queryTokens []string, prodKey string, prodTokens []string) float64 {
	dice := util.DiceCoefficient(queryKey, prodKey)
	overlap := 0.0
	if len(queryTokens) > 0 {
		have := make(map[string]struct{}, len(prodTokens))
		for _, t := range prodTokens {
			have[t] = struct{}{}
		}
		shared := 0
		for _, t := range queryTokens {
			if _, ok := have[t]; ok {
				shared++
			}
		}
		overlap = float64(shared) / float64(len(queryTokens))
	}
	return diceWeight*dice + overlapWeight*overlap
}

func priceOf(p internal.StoredProduct) float64 {
	if p.Price == nil {
		return math.Inf(1)
	}
	return *p.Price
}
