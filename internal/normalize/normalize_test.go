package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monito/internal/pricing"
)

func newTestNormalizer(t *testing.T, mutate ...func(*Config)) *Normalizer {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg)
}

func TestNormalizeProductsNameAndUnit(t *testing.T) {
	n := newTestNormalizer(t)
	res := n.NormalizeProducts([]map[string]any{{"name": "  fresh   tomatoes  ", "unit": "kilogram"}})
	require.True(t, res.Success)
	require.Len(t, res.NormalizedProducts, 1)
	got := res.NormalizedProducts[0]
	assert.Equal(t, "Fresh Tomatoes", got["name"])
	assert.Equal(t, "kg", got["unit"])
	assert.Equal(t, true, got["name_normalized"])
	assert.Equal(t, "mass", got["unit_dimension"])
	assert.Contains(t, got, "quality_score")
	assert.Contains(t, got, "_original_data")
}

func TestNormalizeProductsMergesDuplicates(t *testing.T) {
	n := newTestNormalizer(t)
	res := n.NormalizeProducts([]map[string]any{
		{"name": "Fresh Tomatoes"},
		{"name": "fresh tomatoes"},
		{"name": "Chicken"},
	})
	require.True(t, res.Success)
	require.Len(t, res.NormalizedProducts, 2)
	assert.Equal(t, 2, res.NormalizedProducts[0]["_merged_from"])
	assert.Equal(t, []string{"Fresh Tomatoes", "Fresh Tomatoes"}, res.NormalizedProducts[0]["_merged_products"])
	assert.Equal(t, "Chicken", res.NormalizedProducts[1]["name"])
	assert.NotContains(t, res.NormalizedProducts[1], "_merged_from")

	require.Len(t, res.DuplicatesFound, 1)
	assert.Equal(t, 1, res.DuplicatesFound[0].OriginalIndex)
	assert.Equal(t, 0, res.DuplicatesFound[0].MergedIndex)
	assert.Equal(t, 1.0, res.DuplicatesFound[0].Similarity)
	assert.Equal(t, 3, res.Metadata.TotalInput)
	assert.Equal(t, 2, res.Metadata.TotalOutput)
	assert.Equal(t, 1, res.Metadata.DuplicatesMerged)
}

func TestNormalizeProductsDedupDisabled(t *testing.T) {
	n := newTestNormalizer(t, func(c *Config) { c.EnableDeduplication = false })
	res := n.NormalizeProducts([]map[string]any{{"name": "Fresh Tomatoes"}, {"name": "fresh tomatoes"}})
	assert.Len(t, res.NormalizedProducts, 2)
	assert.Empty(t, res.DuplicatesFound)
}

func TestNormalizeProductsEmpty(t *testing.T) {
	res := newTestNormalizer(t).NormalizeProducts(nil)
	assert.False(t, res.Success)
	assert.Equal(t, ErrEmptyBatch, res.Error)
	assert.Empty(t, res.NormalizedProducts)
}

func TestNormalizeProductsKeepsBadRows(t *testing.T) {
	n := newTestNormalizer(t)
	res := n.NormalizeProducts([]map[string]any{
		{"name": "beras premium", "price": []any{1}},
		{"name": "gula pasir", "price": "call us"},
	})
	require.True(t, res.Success)
	require.Len(t, res.Products, 2)
	assert.Equal(t, 1, res.Stats.Failures)
	assert.Equal(t, "Beras Premium", res.Products[0].Name)
	assert.Nil(t, res.Products[0].Price)

	assert.Equal(t, 1, res.Stats.PriceErrors)
	assert.Equal(t, pricing.ErrNoPattern, res.Products[1].PriceError)
}

func TestNormalizeProductsParsesPriceText(t *testing.T) {
	n := newTestNormalizer(t)
	res := n.NormalizeProducts([]map[string]any{{"Nama Barang": "tomat merah", "Harga": "Rp 15.000/kg"}})
	require.True(t, res.Success)
	p := res.Products[0]
	require.NotNil(t, p.Price)
	assert.Equal(t, 15000.0, *p.Price)
	assert.Equal(t, "IDR", p.Currency)
	assert.Equal(t, "kg", p.Unit)
	require.NotNil(t, p.ParsedPrice)
	assert.Equal(t, pricing.PriceUnitPrice, p.ParsedPrice.Type)
	assert.Equal(t, 1, res.Stats.PricesParsed)
}

func TestNormalizeNameIdempotent(t *testing.T) {
	n := newTestNormalizer(t)
	cases := map[string]string{
		"  fresh   tomatoes  ":           "Fresh Tomatoes",
		"item: beras   5 kilogram":       "Beras 5 kg",
		"No. 12 minyak goreng dan gula":  "Minyak Goreng dan Gula",
		"the best of fruits":             "The Best of Fruits",
		"Produk: item: SUSU UHT 1 liter": "Susu Uht 1 l",
		"1. bawang putih 500 gram":       "Bawang Putih 500 g",
		"daging sapi has dalam / kilo":   "Daging Sapi Has Dalam / kg",
	}
	for in, want := range cases {
		first := n.NormalizeName(in)
		assert.Equal(t, want, first.Value, in)
		assert.Equal(t, 1.0, first.Confidence)
		assert.Equal(t, first.Value, n.NormalizeName(first.Value).Value, "not idempotent: %q", in)
	}
	assert.Equal(t, FieldResult{}, n.NormalizeName("   "))
}

func TestNormalizeUnit(t *testing.T) {
	n := newTestNormalizer(t)

	r := n.NormalizeUnit("Kilogram")
	assert.Equal(t, "kg", r.Value)
	assert.Equal(t, 1.0, r.Confidence)
	assert.Equal(t, DimMass, r.Dimension)

	r = n.NormalizeUnit("PCS")
	assert.Equal(t, "piece", r.Value)
	assert.Equal(t, DimCount, r.Dimension)

	r = n.NormalizeUnit("kilogrm")
	assert.Equal(t, "kg", r.Value)
	assert.InDelta(t, 14.0/15.0, r.Confidence, 1e-9)

	r = n.NormalizeUnit("zzz")
	assert.Equal(t, "zzz", r.Value)
	assert.Equal(t, 0.5, r.Confidence)
	assert.Empty(t, r.Dimension)

	strict := newTestNormalizer(t, func(c *Config) { c.EnableFuzzy = false; c.EnableUnitLibrary = false })
	r = strict.NormalizeUnit("kilogrm")
	assert.Equal(t, "kilogrm", r.Value)
	assert.Equal(t, 0.5, r.Confidence)
	assert.Empty(t, strict.NormalizeUnit("kg").Dimension)
}

func TestNormalizeCategory(t *testing.T) {
	n := newTestNormalizer(t)

	r := n.NormalizeCategory("sayuran segar")
	assert.Equal(t, "Vegetables", r.Value)
	assert.Equal(t, 1.0, r.Confidence)

	assert.Equal(t, "Poultry", n.NormalizeCategory("AYAM potong").Value)
	assert.Equal(t, "Vegetables", n.NormalizeCategory("Vegetables").Value)

	r = n.NormalizeCategory("hardware")
	assert.Equal(t, "Hardware", r.Value)
	assert.Equal(t, 1.0, r.Confidence)
}

func TestNormalizeSupplier(t *testing.T) {
	n := newTestNormalizer(t)
	cases := map[string]string{
		"PT. Sumber Makmur":     "Sumber Makmur",
		"cv maju jaya":          "Maju Jaya",
		"Fresh Farms Co., Ltd.": "Fresh Farms",
		"PT.Sinar Pangan":       "Sinar Pangan",
		"toko sayur dan buah":   "Toko Sayur dan Buah",
		"PT":                    "Pt",
	}
	for in, want := range cases {
		assert.Equal(t, want, n.NormalizeSupplier(in).Value, in)
	}
}

func TestStandardizeSuppliers(t *testing.T) {
	n := newTestNormalizer(t)
	products := []Product{
		{Name: "A", Supplier: "Sumber Makmur Abad"},
		{Name: "B", Supplier: "Sumber Makmur Abadi"},
		{Name: "C", Supplier: "Lain Lagi"},
		{Name: "D"},
	}
	mapping := n.StandardizeSuppliers(products)
	assert.Equal(t, map[string]string{"Sumber Makmur Abad": "Sumber Makmur Abadi"}, mapping)
	assert.Equal(t, "Sumber Makmur Abadi", products[0].Supplier)
	assert.Equal(t, "Lain Lagi", products[2].Supplier)
	assert.Empty(t, products[3].Supplier)

	off := newTestNormalizer(t, func(c *Config) { c.EnableFuzzy = false })
	assert.Empty(t, off.StandardizeSuppliers(products))
}

func TestMergeCluster(t *testing.T) {
	n := newTestNormalizer(t)
	f := func(v float64) *float64 { return &v }
	products := []Product{
		{Name: "Beras Premium", Price: f(100), Supplier: "A", Confidence: f(0.5), Category: "Grains"},
		{Name: "Beras Premium", Price: f(200), Supplier: "B", Confidence: f(0.9), Category: "Grains"},
		{Name: "Beras Premium", Price: f(300), Supplier: "A", Confidence: f(0.7), Category: "Grains"},
	}
	out, report := n.FindAndMergeDuplicates(products)
	require.Len(t, out, 1)
	require.Len(t, report, 2)

	m := out[0]
	assert.Equal(t, 200.0, *m.Price)
	assert.Equal(t, &PriceRange{Min: 100, Max: 300}, m.PriceRange)
	assert.Equal(t, "A", m.Supplier)
	assert.Equal(t, "Grains", m.Category)
	assert.InDelta(t, 0.7, *m.Confidence, 1e-9)
	assert.Equal(t, 3, m.MergedFrom)

	// the inputs are left untouched
	assert.Equal(t, 100.0, *products[0].Price)
	assert.Zero(t, products[1].MergedFrom)
}

func TestSimilarityIgnoresFieldsEmptyOnBothSides(t *testing.T) {
	a := Product{Name: "Fresh Tomatoes", Unit: "kg"}
	b := Product{Name: "Fresh Tomatoes"}
	assert.Equal(t, 1.0, Similarity(Product{Name: "x"}, Product{Name: "x"}))
	assert.InDelta(t, 0.6/0.8, Similarity(a, b), 1e-9)
	assert.Zero(t, Similarity(Product{}, Product{}))
}

func TestGreedyClustererOrder(t *testing.T) {
	groups := map[int]int{0: 0, 1: 1, 2: 0, 3: 1, 4: 2}
	clusters := GreedyClusterer{}.Cluster(5, func(i, j int) float64 {
		if groups[i] == groups[j] {
			return 1
		}
		return 0
	}, 0.5)
	require.Len(t, clusters, 3)
	assert.Equal(t, []int{0, 2}, clusters[0].Members)
	assert.Equal(t, []int{1, 3}, clusters[1].Members)
	assert.Equal(t, []int{4}, clusters[2].Members)
}

func TestQualityScore(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	full := Product{
		Name: "Fresh Tomatoes", Price: f(1), Unit: "kg", UnitConfidence: f(1),
		Category: "Vegetables", Supplier: "Tani", Confidence: f(1),
	}
	assert.Equal(t, 1.0, QualityScore(full))
	assert.Zero(t, QualityScore(Product{}))
	assert.InDelta(t, 0.30, QualityScore(Product{Name: "Abcd"}), 1e-9)
	assert.InDelta(t, 0.30+0.20, QualityScore(Product{Name: "Abcd", Unit: "zz", UnitConfidence: f(0.5)}), 1e-9)
}

func TestProductFromRow(t *testing.T) {
	p, err := ProductFromRow(map[string]any{
		"Nama Barang": "Beras",
		"SATUAN":      "kg",
		"vendor":      "PT X",
		"harga":       12000,
		"warna":       "putih",
		"kategori":    nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "Beras", p.Name)
	assert.Equal(t, "kg", p.Unit)
	assert.Equal(t, "PT X", p.Supplier)
	assert.Equal(t, 12000.0, *p.Price)
	assert.Equal(t, map[string]any{"warna": "putih"}, p.Extra)
	assert.Empty(t, p.Category)

	m := p.ToMap()
	assert.Equal(t, "putih", m["warna"])
	assert.Equal(t, 12000.0, m["price"])

	_, err = ProductFromRow(map[string]any{"name": map[string]any{}})
	assert.Error(t, err)
}

func TestCaches(t *testing.T) {
	empty, err := NewCaches(0)
	require.NoError(t, err)
	assert.Nil(t, empty.Names)

	c, err := NewCaches(8)
	require.NoError(t, err)
	n := New(DefaultConfig(), WithCaches(c))
	n.NormalizeName("fresh tomatoes")
	n.NormalizeName("fresh tomatoes")
	assert.Equal(t, 1, c.Names.Len())

	uncached := New(DefaultConfig(), WithCaches(Caches{}))
	assert.Equal(t, "Fresh Tomatoes", uncached.NormalizeName("fresh tomatoes").Value)
}

func TestConfigFromMap(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]any{"enable_deduplication": false})
	require.NoError(t, err)
	assert.False(t, cfg.EnableDeduplication)
	assert.Equal(t, 0.85, cfg.NameSimilarityThreshold)

	_, err = ConfigFromMap(map[string]any{"dedupe": true})
	assert.Error(t, err)
}
