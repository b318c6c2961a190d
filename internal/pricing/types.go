// Package pricing turns free-text supplier price expressions ("Rp 15.000",
// "15k-20k", "250@10pcs", "20000 (disc 10%)") into typed ParsedPrice values.
package pricing

// PriceType tags which field group of a ParsedPrice is populated.
type PriceType string

const (
	PriceSingle      PriceType = "single"
	PriceRange       PriceType = "range"
	PriceBulk        PriceType = "bulk"
	PriceTiered      PriceType = "tiered"
	PriceConditional PriceType = "conditional"
	PriceFraction    PriceType = "fraction"
	PriceUnitPrice   PriceType = "unit_price"
	PriceDiscount    PriceType = "discount"
	PriceUnknown     PriceType = "unknown"
)

const (
	ErrEmptyInput = "Empty or invalid input"
	ErrNoPattern  = "No valid price pattern found"
)

type ParsedPrice struct {
	Type            PriceType `json:"price_type"`
	PrimaryPrice    *float64  `json:"primary_price,omitempty"`
	SecondaryPrice  *float64  `json:"secondary_price,omitempty"`
	MinPrice        *float64  `json:"min_price,omitempty"`
	MaxPrice        *float64  `json:"max_price,omitempty"`
	Currency        string    `json:"currency"`
	Unit            string    `json:"unit,omitempty"`
	Quantity        *float64  `json:"quantity,omitempty"`
	QuantityUnit    string    `json:"quantity_unit,omitempty"`
	DiscountPercent *float64  `json:"discount_percent,omitempty"`
	Conditions      []string  `json:"conditions"`
	Confidence      float64   `json:"confidence"`
	OriginalText    string    `json:"original_text"`
}

// Primary returns the canonical price, or 0 when none was parsed.
func (p ParsedPrice) Primary() float64 {
	if p.PrimaryPrice == nil {
		return 0
	}
	return *p.PrimaryPrice
}

// Attempt records one strategy of the cascade and why it did not match.
type Attempt struct {
	Strategy PriceType `json:"strategy"`
	Matched  bool      `json:"matched"`
	Reason   string    `json:"reason,omitempty"`
}

type Metadata struct {
	OriginalText     string    `json:"original_text"`
	CurrencyDetected string    `json:"currency_detected"`
	ParsingTimeMs    float64   `json:"parsing_time_ms"`
	Attempts         []Attempt `json:"attempts,omitempty"`
}

type Result struct {
	Success     bool         `json:"success"`
	ParsedPrice *ParsedPrice `json:"parsed_price"`
	Error       string       `json:"error,omitempty"`
	Metadata    Metadata     `json:"metadata"`
}

type BatchMetadata struct {
	Total            int     `json:"total"`
	Successful       int     `json:"successful"`
	SuccessRate      float64 `json:"success_rate"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

type BatchResult struct {
	Success  bool          `json:"success"`
	Results  []Result      `json:"results"`
	Metadata BatchMetadata `json:"metadata"`
}
