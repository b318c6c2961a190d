package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"monito/internal/pricing"
)

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Product is one supplier offer. Well-known keys are typed; everything else
// the extractor produced rides along in Extra.
type Product struct {
	Name        string
	Unit        string
	Price       *float64
	PriceText   string
	Currency    string
	Category    string
	Supplier    string
	Description string
	Confidence  *float64

	QualityScore       *float64
	NameNormalized     bool
	UnitConfidence     *float64
	UnitDimension      Dimension
	CategoryConfidence *float64
	SupplierNormalized bool
	PriceError         string
	ParsedPrice        *pricing.ParsedPrice

	MergedFrom     int
	MergedProducts []string
	PriceRange     *PriceRange

	Original map[string]any
	Extra    map[string]any
}

var fieldAliases = map[string]string{
	"name": "name", "product_name": "name", "product": "name", "nama": "name",
	"nama_barang": "name", "nama_produk": "name", "item": "name",
	"unit": "unit", "satuan": "unit", "uom": "unit",
	"price": "price", "harga": "price", "unit_price": "price", "harga_satuan": "price",
	"currency": "currency", "mata_uang": "currency",
	"category": "category", "kategori": "category",
	"supplier": "supplier", "vendor": "supplier", "pemasok": "supplier", "toko": "supplier",
	"description": "description", "deskripsi": "description", "keterangan": "description",
	"confidence":          "confidence",
	"quality_score":       "quality_score",
	"name_normalized":     "name_normalized",
	"unit_confidence":     "unit_confidence",
	"unit_dimension":      "unit_dimension",
	"category_confidence": "category_confidence",
	"supplier_normalized": "supplier_normalized",
	"price_error":         "price_error",
	"_merged_from":        "_merged_from",
	"_merged_products":    "_merged_products",
	"price_range":         "price_range",
	// regenerated on every run
	"parsed_price":   "-",
	"_original_data": "-",
}

func canonicalKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.Join(strings.Fields(k), "_")
	if alias, ok := fieldAliases[k]; ok {
		return alias
	}
	return ""
}

// ProductFromRow maps an extracted row onto a Product. Keys are matched
// case-insensitively and through common aliases. A value of the wrong type
// leaves its field unset and is reported in the returned error; the rest of
// the row is still mapped.
func ProductFromRow(row map[string]any) (Product, error) {
	p := Product{Original: make(map[string]any, len(row))}
	var errs []error

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rawKey := range keys {
		v := row[rawKey]
		p.Original[rawKey] = v
		key := canonicalKey(rawKey)
		if key == "-" {
			continue
		}
		if key == "" {
			if p.Extra == nil {
				p.Extra = map[string]any{}
			}
			p.Extra[rawKey] = v
			continue
		}
		if v == nil {
			continue
		}
		if err := p.set(key, v); err != nil {
			errs = append(errs, fmt.Errorf("field %q: %w", rawKey, err))
		}
	}
	return p, errors.Join(errs...)
}

func (p *Product) set(key string, v any) error {
	var err error
	switch key {
	case "name":
		p.Name, err = asText(v)
	case "unit":
		p.Unit, err = asText(v)
	case "currency":
		p.Currency, err = asText(v)
	case "category":
		p.Category, err = asText(v)
	case "supplier":
		p.Supplier, err = asText(v)
	case "description":
		p.Description, err = asText(v)
	case "price_error":
		p.PriceError, err = asText(v)
	case "unit_dimension":
		var d string
		d, err = asText(v)
		p.UnitDimension = Dimension(d)
	case "price":
		if s, ok := v.(string); ok {
			p.PriceText = s
			return nil
		}
		p.Price, err = asNumberPtr(v)
	case "confidence":
		p.Confidence, err = asNumberPtr(v)
	case "quality_score":
		p.QualityScore, err = asNumberPtr(v)
	case "unit_confidence":
		p.UnitConfidence, err = asNumberPtr(v)
	case "category_confidence":
		p.CategoryConfidence, err = asNumberPtr(v)
	case "name_normalized":
		p.NameNormalized, err = asBool(v)
	case "supplier_normalized":
		p.SupplierNormalized, err = asBool(v)
	case "_merged_from":
		var f *float64
		f, err = asNumberPtr(v)
		if f != nil {
			p.MergedFrom = int(*f)
		}
	case "_merged_products":
		p.MergedProducts, err = asStrings(v)
	case "price_range":
		p.PriceRange, err = asPriceRange(v)
	}
	return err
}

func asText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64, float32, int, int64, int32, json.Number:
		return fmt.Sprint(t), nil
	}
	return "", fmt.Errorf("unsupported text value %T", v)
}

func asNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	return 0, fmt.Errorf("unsupported numeric value %T", v)
}

func asNumberPtr(v any) (*float64, error) {
	f, err := asNumber(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("unsupported flag value %T", v)
	}
	return b, nil
}

func asStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, err := asText(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported list value %T", v)
}

func asPriceRange(v any) (*PriceRange, error) {
	switch t := v.(type) {
	case PriceRange:
		return &t, nil
	case *PriceRange:
		return t, nil
	case map[string]any:
		lo, err := asNumber(t["min"])
		if err != nil {
			return nil, err
		}
		hi, err := asNumber(t["max"])
		if err != nil {
			return nil, err
		}
		return &PriceRange{Min: lo, Max: hi}, nil
	}
	return nil, fmt.Errorf("unsupported price range %T", v)
}

// ToMap renders the product in the open-map shape handed to loaders and
// JSON output. Unset fields are omitted; name is always present.
func (p Product) ToMap() map[string]any {
	m := make(map[string]any, len(p.Extra)+16)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["name"] = p.Name
	putString(m, "unit", p.Unit)
	putString(m, "currency", p.Currency)
	putString(m, "category", p.Category)
	putString(m, "supplier", p.Supplier)
	putString(m, "description", p.Description)
	putString(m, "price_error", p.PriceError)
	putString(m, "unit_dimension", string(p.UnitDimension))
	switch {
	case p.Price != nil:
		m["price"] = *p.Price
	case p.PriceText != "":
		m["price"] = p.PriceText
	}
	putFloat(m, "confidence", p.Confidence)
	putFloat(m, "quality_score", p.QualityScore)
	putFloat(m, "unit_confidence", p.UnitConfidence)
	putFloat(m, "category_confidence", p.CategoryConfidence)
	if p.NameNormalized {
		m["name_normalized"] = true
	}
	if p.SupplierNormalized {
		m["supplier_normalized"] = true
	}
	if p.ParsedPrice != nil {
		m["parsed_price"] = *p.ParsedPrice
	}
	if p.MergedFrom > 0 {
		m["_merged_from"] = p.MergedFrom
		m["_merged_products"] = append([]string(nil), p.MergedProducts...)
	}
	if p.PriceRange != nil {
		m["price_range"] = map[string]any{"min": p.PriceRange.Min, "max": p.PriceRange.Max}
	}
	if p.Original != nil {
		m["_original_data"] = p.Original
	}
	return m
}

func putString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func putFloat(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func (p Product) clone() Product {
	c := p
	if p.MergedProducts != nil {
		c.MergedProducts = append([]string(nil), p.MergedProducts...)
	}
	if p.Extra != nil {
		c.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return c
}
