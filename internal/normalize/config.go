// Package normalize canonicalizes supplier product rows: names, units,
// categories and suppliers, then merges near-duplicates and scores each
// record for completeness.
package normalize

import "monito/internal/util"

type Config struct {
	NameSimilarityThreshold     float64 `json:"name_similarity_threshold"`
	SupplierSimilarityThreshold float64 `json:"supplier_similarity_threshold"`
	EnableDeduplication         bool    `json:"enable_deduplication"`
	StandardizeSuppliers        bool    `json:"standardize_suppliers"`
	EnableFuzzy                 bool    `json:"enable_fuzzy"`
	EnableUnitLibrary           bool    `json:"enable_unit_library"`
	CacheSize                   int     `json:"cache_size"`
}

func DefaultConfig() Config {
	return Config{
		NameSimilarityThreshold:     0.85,
		SupplierSimilarityThreshold: 0.90,
		EnableDeduplication:         true,
		StandardizeSuppliers:        true,
		EnableFuzzy:                 true,
		EnableUnitLibrary:           true,
		CacheSize:                   4096,
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
