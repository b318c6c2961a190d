package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"monito/internal/normalize"
	"monito/internal/pricing"
)

type Config struct {
	DBPath     string
	RawMailDir string
	OutputDir  string

	LogLevel string

	PriceDefaultCurrency string
	PriceValidate        bool
	PriceMin             float64
	PriceMax             float64

	NameSimilarityThreshold     float64
	SupplierSimilarityThreshold float64
	NormalizeDedup              bool
	NormalizeSuppliers          bool
	NormalizeFuzzy              bool
	NormalizeUnitLibrary        bool
	NormalizeCacheSize          int

	LookupMinScore float64
	LookupLimit    int

	GmailClientID       string
	GmailClientSecret   string
	GmailRedirectURI    string
	GmailRefreshToken   string
	GmailRequestsPerSec int

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailListenerProvider     string
	MailListenerLabel        string
	MailListenerIntervalSec  int
	MailListenerFetchMax     int
	MailListenerProcessBatch int
	MailListenerAutoExport   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		PriceDefaultCurrency: getEnv("PRICE_DEFAULT_CURRENCY", "IDR"),
		PriceValidate:        getEnvBool("PRICE_VALIDATE", true),
		PriceMin:             getEnvFloat("PRICE_MIN", 1),
		PriceMax:             getEnvFloat("PRICE_MAX", 1e9),

		NameSimilarityThreshold:     getEnvFloat("NORMALIZE_NAME_THRESHOLD", 0.85),
		SupplierSimilarityThreshold: getEnvFloat("NORMALIZE_SUPPLIER_THRESHOLD", 0.90),
		NormalizeDedup:              getEnvBool("NORMALIZE_DEDUP", true),
		NormalizeSuppliers:          getEnvBool("NORMALIZE_STANDARDIZE_SUPPLIERS", true),
		NormalizeFuzzy:              getEnvBool("NORMALIZE_FUZZY", true),
		NormalizeUnitLibrary:        getEnvBool("NORMALIZE_UNIT_LIBRARY", true),
		NormalizeCacheSize:          getEnvInt("NORMALIZE_CACHE_SIZE", 4096),

		LookupMinScore: getEnvFloat("LOOKUP_MIN_SCORE", 0.45),
		LookupLimit:    getEnvInt("LOOKUP_LIMIT", 5),

		GmailClientID:       getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret:   getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:    getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken:   getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailRequestsPerSec: getEnvInt("GMAIL_REQUESTS_PER_SECOND", 10),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		MailListenerProvider:     getEnv("MAIL_LISTENER_PROVIDER", "gmail"),
		MailListenerLabel:        getEnv("MAIL_LISTENER_LABEL", "INBOX"),
		MailListenerIntervalSec:  getEnvInt("MAIL_LISTENER_INTERVAL_SEC", 30),
		MailListenerFetchMax:     getEnvInt("MAIL_LISTENER_FETCH_MAX", 20),
		MailListenerProcessBatch: getEnvInt("MAIL_LISTENER_PROCESS_BATCH", 20),
		MailListenerAutoExport:   getEnvBool("MAIL_LISTENER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Pricing() pricing.Config {
	return pricing.Config{
		DefaultCurrency: c.PriceDefaultCurrency,
		ValidatePrices:  c.PriceValidate,
		MinPrice:        c.PriceMin,
		MaxPrice:        c.PriceMax,
	}
}

func (c Config) Normalize() normalize.Config {
	return normalize.Config{
		NameSimilarityThreshold:     c.NameSimilarityThreshold,
		SupplierSimilarityThreshold: c.SupplierSimilarityThreshold,
		EnableDeduplication:         c.NormalizeDedup,
		StandardizeSuppliers:        c.NormalizeSuppliers,
		EnableFuzzy:                 c.NormalizeFuzzy,
		EnableUnitLibrary:           c.NormalizeUnitLibrary,
		CacheSize:                   c.NormalizeCacheSize,
	}
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
