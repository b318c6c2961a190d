package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"monito/internal/util"
)

// Cluster is a group of product indexes. Members[0] is the seed;
// Similarities[i] is the score of Members[i] against the seed.
type Cluster struct {
	Members      []int
	Similarities []float64
}

// Clusterer groups n items given a pairwise similarity.
type Clusterer interface {
	Cluster(n int, similarity func(i, j int) float64, threshold float64) []Cluster
}

// GreedyClusterer seeds a cluster with each unassigned item in order and
// absorbs every later unassigned item scoring at or above threshold against
// the seed. It is quadratic in the batch size.
type GreedyClusterer struct{}

func (GreedyClusterer) Cluster(n int, similarity func(i, j int) float64, threshold float64) []Cluster {
	assigned := make([]bool, n)
	var clusters []Cluster
	for i := 0; i < n; i++ {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		c := Cluster{Members: []int{i}, Similarities: []float64{1}}
		for j := i + 1; j < n; j++ {
			if assigned[j] {
				continue
			}
			if s := similarity(i, j); s >= threshold {
				assigned[j] = true
				c.Members = append(c.Members, j)
				c.Similarities = append(c.Similarities, s)
			}
		}
		clusters = append(clusters, c)
	}
	return clusters
}

type DuplicateEntry struct {
	OriginalIndex int     `json:"original_index"`
	MergedIndex   int     `json:"merged_index"`
	Similarity    float64 `json:"similarity"`
	Name          string  `json:"name"`
}

var similarityWeights = []struct {
	weight float64
	field  func(Product) string
}{
	{0.6, func(p Product) string { return p.Name }},
	{0.2, func(p Product) string { return p.Unit }},
	{0.1, func(p Product) string { return p.Category }},
	{0.1, func(p Product) string { return p.Supplier }},
}

// Similarity scores two products in [0,1]. Fields empty on both sides say
// nothing about the pair and are left out, with the remaining weights
// rescaled; a field present on one side only scores 0.
func Similarity(a, b Product) float64 {
	var total, score float64
	for _, w := range similarityWeights {
		av := strings.ToLower(strings.TrimSpace(w.field(a)))
		bv := strings.ToLower(strings.TrimSpace(w.field(b)))
		if av == "" && bv == "" {
			continue
		}
		total += w.weight
		score += w.weight * util.Ratio(av, bv)
	}
	if total == 0 {
		return 0
	}
	return score / total
}

// FindAndMergeDuplicates clusters near-identical products and merges each
// cluster into one record. Output keeps the order of each cluster's seed.
func (n *Normalizer) FindAndMergeDuplicates(products []Product) ([]Product, []DuplicateEntry) {
	if !n.cfg.EnableFuzzy || len(products) < 2 {
		return products, nil
	}
	clusters := n.clusterer.Cluster(len(products), func(i, j int) float64 {
		return Similarity(products[i], products[j])
	}, n.cfg.NameSimilarityThreshold)

	out := make([]Product, 0, len(clusters))
	var report []DuplicateEntry
	for _, c := range clusters {
		idx := len(out)
		if len(c.Members) == 1 {
			out = append(out, products[c.Members[0]])
			continue
		}
		members := make([]Product, len(c.Members))
		for k, m := range c.Members {
			members[k] = products[m]
		}
		out = append(out, mergeCluster(members))
		for k := 1; k < len(c.Members); k++ {
			report = append(report, DuplicateEntry{
				OriginalIndex: c.Members[k],
				MergedIndex:   idx,
				Similarity:    c.Similarities[k],
				Name:          products[c.Members[k]].Name,
			})
		}
	}
	return out, report
}

func mergeCluster(members []Product) Product {
	base := 0
	for i := 1; i < len(members); i++ {
		if confidenceOf(members[i]) > confidenceOf(members[base]) {
			base = i
		}
	}
	merged := members[base].clone()

	var prices []float64
	var confSum float64
	var confN int
	names := make([]string, 0, len(members))
	suppliers := make([]string, 0, len(members))
	categories := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
		suppliers = append(suppliers, m.Supplier)
		categories = append(categories, m.Category)
		if m.Price != nil {
			prices = append(prices, *m.Price)
		}
		if m.Confidence != nil {
			confSum += *m.Confidence
			confN++
		}
	}

	if len(prices) > 0 {
		sum := decimal.Zero
		lo, hi := prices[0], prices[0]
		for _, p := range prices {
			sum = sum.Add(decimal.NewFromFloat(p))
			lo = min(lo, p)
			hi = max(hi, p)
		}
		mean, _ := sum.Div(decimal.NewFromInt(int64(len(prices)))).Round(2).Float64()
		merged.Price = &mean
		merged.PriceRange = &PriceRange{Min: lo, Max: hi}
	}
	if v := majority(suppliers); v != "" {
		merged.Supplier = v
	}
	if v := majority(categories); v != "" {
		merged.Category = v
	}
	if confN > 0 {
		avg := confSum / float64(confN)
		merged.Confidence = &avg
	}
	merged.MergedFrom = len(members)
	merged.MergedProducts = names
	return merged
}

func confidenceOf(p Product) float64 {
	if p.Confidence == nil {
		return 0
	}
	return *p.Confidence
}

// majority returns the most common non-empty value; the first seen wins ties.
func majority(values []string) string {
	counts := map[string]int{}
	best, bestN := "", 0
	for _, v := range values {
		if v == "" {
			continue
		}
		counts[v]++
	}
	for _, v := range values {
		if v != "" && counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}
