package pricing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"monito/internal/util"
)

type currencyRule struct {
	code    string
	pattern *regexp.Regexp
}

// SGD precedes USD so "S$" is not read as dollars.
var currencyRules = []currencyRule{
	{"IDR", regexp.MustCompile(`(?i)\brp\.?|\bidr\b|\brupiah\b`)},
	{"SGD", regexp.MustCompile(`(?i)s\$|\bsgd\b`)},
	{"USD", regexp.MustCompile(`(?i)\$|\busd\b|\bdollars?\b`)},
	{"EUR", regexp.MustCompile(`(?i)€|\beur\b|\beuros?\b`)},
	{"MYR", regexp.MustCompile(`(?i)\brm\b|\bmyr\b|\bringgit\b`)},
}

var (
	prefixPattern  = regexp.MustCompile(`^(?:harga|price)\s*:?\s*`)
	currencyTokens = regexp.MustCompile(`s\$|\$|€|\brp\.?|\b(?:idr|rupiah|usd|dollars?|sgd|eur|euros?|rm|myr|ringgit)\b`)
	trailingDash   = regexp.MustCompile(`(\d)\s*[.,]-`)
	symbolReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-", "×", "x")
)

type Parser struct {
	cfg Config
}

func NewParser(cfg Config) *Parser {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "IDR"
	}
	return &Parser{cfg: cfg}
}

func (p *Parser) Config() Config { return p.cfg }

// ParseValue accepts untyped cell values; anything but a string is rejected.
func (p *Parser) ParseValue(v any) Result {
	s, ok := v.(string)
	if !ok {
		return Result{
			Error:    ErrEmptyInput,
			Metadata: Metadata{CurrencyDetected: p.cfg.DefaultCurrency},
		}
	}
	return p.Parse(s)
}

func (p *Parser) Parse(text string) Result {
	start := time.Now()
	meta := Metadata{OriginalText: text, CurrencyDetected: p.cfg.DefaultCurrency}
	fail := func(msg string) Result {
		meta.ParsingTimeMs = elapsedMs(start)
		return Result{Error: msg, Metadata: meta}
	}

	if strings.TrimSpace(text) == "" {
		return fail(ErrEmptyInput)
	}

	currency, explicit := p.detectCurrency(text)
	meta.CurrencyDetected = currency

	cleaned := cleanPriceText(text)
	price, attempts, ok := runCascade(cleaned)
	meta.Attempts = attempts
	if !ok {
		return fail(ErrNoPattern)
	}
	price.Currency = currency
	price.OriginalText = text
	if price.Conditions == nil {
		price.Conditions = []string{}
	}

	if p.cfg.ValidatePrices {
		if err := p.validate(price); err != nil {
			return fail(err.Error())
		}
	}
	price.Confidence = confidence(price, explicit, text)

	meta.ParsingTimeMs = elapsedMs(start)
	return Result{Success: true, ParsedPrice: &price, Metadata: meta}
}

func (p *Parser) ParseBatch(texts []string) BatchResult {
	start := time.Now()
	results := make([]Result, 0, len(texts))
	ok := 0
	for _, t := range texts {
		r := p.Parse(t)
		if r.Success {
			ok++
		}
		results = append(results, r)
	}
	rate := 0.0
	if len(texts) > 0 {
		rate = float64(ok) / float64(len(texts))
	}
	return BatchResult{
		Success: true,
		Results: results,
		Metadata: BatchMetadata{
			Total:            len(texts),
			Successful:       ok,
			SuccessRate:      rate,
			ProcessingTimeMs: elapsedMs(start),
		},
	}
}

func (p *Parser) detectCurrency(text string) (string, bool) {
	for _, rule := range currencyRules {
		if rule.pattern.MatchString(text) {
			return rule.code, true
		}
	}
	return p.cfg.DefaultCurrency, false
}

func cleanPriceText(text string) string {
	s := strings.ToLower(util.CollapseSpaces(text))
	s = symbolReplacer.Replace(s)
	s = prefixPattern.ReplaceAllString(s, "")
	s = currencyTokens.ReplaceAllString(s, " ")
	s = trailingDash.ReplaceAllString(s, "$1")
	return util.CollapseSpaces(s)
}

func runCascade(text string) (ParsedPrice, []Attempt, bool) {
	attempts := make([]Attempt, 0, len(cascade))
	for _, st := range cascade {
		out := st.parse(text)
		attempts = append(attempts, Attempt{Strategy: st.kind, Matched: out.ok, Reason: out.reason})
		if out.ok {
			return out.price, attempts, true
		}
	}
	return ParsedPrice{}, attempts, false
}

func (p *Parser) validate(price ParsedPrice) error {
	check := func(v *float64) error {
		if v == nil {
			return nil
		}
		if *v < p.cfg.MinPrice {
			return fmt.Errorf("price %s is below minimum %s", fmtNum(*v), fmtNum(p.cfg.MinPrice))
		}
		if *v > p.cfg.MaxPrice {
			return fmt.Errorf("price %s exceeds maximum %s", fmtNum(*v), fmtNum(p.cfg.MaxPrice))
		}
		return nil
	}
	if price.PrimaryPrice == nil || *price.PrimaryPrice <= 0 {
		return fmt.Errorf("price must be positive")
	}
	for _, v := range []*float64{price.PrimaryPrice, price.SecondaryPrice, price.MinPrice, price.MaxPrice} {
		if err := check(v); err != nil {
			return err
		}
	}
	if price.MinPrice != nil && price.MaxPrice != nil && *price.MinPrice > *price.MaxPrice {
		return fmt.Errorf("range minimum %s exceeds maximum %s", fmtNum(*price.MinPrice), fmtNum(*price.MaxPrice))
	}
	return nil
}

func fmtNum(v float64) string {
	return formatQty(v)
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
