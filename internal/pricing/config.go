package pricing

import "monito/internal/util"

type Config struct {
	DefaultCurrency string  `json:"default_currency"`
	ValidatePrices  bool    `json:"validate_prices"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
}

func DefaultConfig() Config {
	return Config{
		DefaultCurrency: "IDR",
		ValidatePrices:  true,
		MinPrice:        1,
		MaxPrice:        1e9,
	}
}

// ConfigFromMap overlays m on the defaults. Unknown keys are an error.
func ConfigFromMap(m map[string]any) (Config, error) {
	cfg := DefaultConfig()
	if err := util.DecodeStrict(m, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
