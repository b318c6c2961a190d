package normalize

import (
	"log/slog"
	"time"

	"monito/internal/pricing"
)

const ErrEmptyBatch = "Empty product list"

type Normalizer struct {
	cfg       Config
	caches    Caches
	ownCaches bool
	parser    *pricing.Parser
	clusterer Clusterer
	log       *slog.Logger
}

type Option func(*Normalizer)

// WithCaches injects shared caches. A zero Caches disables memoization.
func WithCaches(c Caches) Option {
	return func(n *Normalizer) { n.caches, n.ownCaches = c, false }
}

func WithParser(p *pricing.Parser) Option { return func(n *Normalizer) { n.parser = p } }

func WithClusterer(c Clusterer) Option { return func(n *Normalizer) { n.clusterer = c } }

func WithLogger(l *slog.Logger) Option { return func(n *Normalizer) { n.log = l } }

// New builds a Normalizer. Without WithCaches it allocates its own caches of
// cfg.CacheSize entries per field.
func New(cfg Config, opts ...Option) *Normalizer {
	n := &Normalizer{cfg: cfg, ownCaches: true, clusterer: GreedyClusterer{}, log: slog.Default()}
	for _, opt := range opts {
		opt(n)
	}
	if n.ownCaches {
		// lru.New only rejects non-positive sizes, which NewCaches screens out.
		n.caches, _ = NewCaches(cfg.CacheSize)
	}
	if n.parser == nil {
		n.parser = pricing.NewParser(pricing.DefaultConfig())
	}
	return n
}

func (n *Normalizer) Config() Config { return n.cfg }

type Stats struct {
	Names        int `json:"names"`
	Units        int `json:"units"`
	Categories   int `json:"categories"`
	Suppliers    int `json:"suppliers"`
	PricesParsed int `json:"prices_parsed"`
	PriceErrors  int `json:"price_errors"`
	Failures     int `json:"failures"`
}

type Metadata struct {
	TotalInput            int     `json:"total_input"`
	TotalOutput           int     `json:"total_output"`
	DuplicatesMerged      int     `json:"duplicates_merged"`
	SuppliersStandardized int     `json:"suppliers_standardized"`
	AverageQuality        float64 `json:"average_quality"`
	ProcessingTimeMs      float64 `json:"processing_time_ms"`
}

type Result struct {
	Success            bool             `json:"success"`
	NormalizedProducts []map[string]any `json:"normalized_products"`
	DuplicatesFound    []DuplicateEntry `json:"duplicates_found"`
	Metadata           Metadata         `json:"metadata"`
	Stats              Stats            `json:"normalization_stats"`
	Error              string           `json:"error,omitempty"`

	// Products is the typed form of NormalizedProducts.
	Products []Product `json:"-"`
}

// NormalizeProducts runs a batch through field normalization, duplicate
// merging, supplier standardization and quality scoring. A bad row never
// aborts the batch; it is logged and carried through with the offending
// fields unset.
func (n *Normalizer) NormalizeProducts(rows []map[string]any) Result {
	start := time.Now()
	res := Result{NormalizedProducts: []map[string]any{}, DuplicatesFound: []DuplicateEntry{}}
	if len(rows) == 0 {
		res.Error = ErrEmptyBatch
		return res
	}

	products := make([]Product, 0, len(rows))
	for i, row := range rows {
		p, err := ProductFromRow(row)
		if err != nil {
			res.Stats.Failures++
			n.log.Warn("product row has unusable fields", "index", i, "err", err)
		}
		n.normalizeOne(&p, &res.Stats)
		products = append(products, p)
	}

	if n.cfg.EnableDeduplication {
		var dups []DuplicateEntry
		products, dups = n.FindAndMergeDuplicates(products)
		if dups != nil {
			res.DuplicatesFound = dups
		}
	}
	if n.cfg.StandardizeSuppliers {
		res.Metadata.SuppliersStandardized = len(n.StandardizeSuppliers(products))
	}

	var qualitySum float64
	for i := range products {
		q := QualityScore(products[i])
		products[i].QualityScore = &q
		qualitySum += q
		res.NormalizedProducts = append(res.NormalizedProducts, products[i].ToMap())
	}

	res.Success = true
	res.Products = products
	res.Metadata.TotalInput = len(rows)
	res.Metadata.TotalOutput = len(products)
	res.Metadata.DuplicatesMerged = len(rows) - len(products)
	res.Metadata.AverageQuality = qualitySum / float64(len(products))
	res.Metadata.ProcessingTimeMs = float64(time.Since(start).Microseconds()) / 1000

	n.log.Debug("normalized product batch",
		"input", res.Metadata.TotalInput,
		"output", res.Metadata.TotalOutput,
		"price_errors", res.Stats.PriceErrors,
		"elapsed_ms", res.Metadata.ProcessingTimeMs,
	)
	return res
}

func (n *Normalizer) normalizeOne(p *Product, stats *Stats) {
	if p.Name != "" {
		r := n.NormalizeName(p.Name)
		p.Name = r.Value
		p.NameNormalized = true
		stats.Names++
	}
	if p.Unit != "" {
		r := n.NormalizeUnit(p.Unit)
		conf := r.Confidence
		p.Unit = r.Value
		p.UnitConfidence = &conf
		p.UnitDimension = r.Dimension
		stats.Units++
	}
	if p.Category != "" {
		r := n.NormalizeCategory(p.Category)
		conf := r.Confidence
		p.Category = r.Value
		p.CategoryConfidence = &conf
		stats.Categories++
	}
	if p.Supplier != "" {
		p.Supplier = n.NormalizeSupplier(p.Supplier).Value
		p.SupplierNormalized = true
		stats.Suppliers++
	}
	n.resolvePrice(p, stats)
}

func (n *Normalizer) resolvePrice(p *Product, stats *Stats) {
	if p.PriceText == "" {
		if p.Price != nil && p.Currency == "" {
			p.Currency = n.parser.Config().DefaultCurrency
		}
		return
	}
	res := n.parser.Parse(p.PriceText)
	if !res.Success {
		p.PriceError = res.Error
		stats.PriceErrors++
		return
	}
	price := res.ParsedPrice.Primary()
	p.Price = &price
	p.ParsedPrice = res.ParsedPrice
	p.PriceError = ""
	if p.Currency == "" {
		p.Currency = res.ParsedPrice.Currency
	}
	if p.Unit == "" && res.ParsedPrice.Unit != "" {
		r := n.NormalizeUnit(res.ParsedPrice.Unit)
		conf := r.Confidence
		p.Unit = r.Value
		p.UnitConfidence = &conf
		p.UnitDimension = r.Dimension
	}
	stats.PricesParsed++
}
