// Monito CLI: supplier price-list normalization.
//
// Usage:
//
//	monito parse-price "Rp 15.000/kg" "2 for 25k"
//	monito normalize --in products.json --out normalized.json
//	monito run --input pricelist.xlsx --out result.xlsx
//	monito mail:fetch --provider imap
//	monito prices:search "beras premium"
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"monito/internal/config"
	"monito/internal/logging"
	"monito/internal/lookup"
	"monito/internal/normalize"
	"monito/internal/pipeline"
	"monito/internal/pricing"
	"monito/internal/storage"
	"monito/internal/util"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "monito",
		Usage:   "Normalize supplier price lists into a comparable product store",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "SQLite database path",
				EnvVars: []string{"DB_PATH"},
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Usage:   "Directory for generated reports",
				EnvVars: []string{"OUTPUT_DIR"},
			},
			&cli.StringFlag{
				Name:    "raw-mail-dir",
				Usage:   "Directory for raw fetched emails",
				EnvVars: []string{"MAIL_RAW_DIR"},
			},
		},
		Commands: []*cli.Command{
			parsePriceCommand(),
			normalizeCommand(),
			runCommand(),
			mailFetchCommand(),
			mailProcessCommand(),
			mailListenCommand(),
			exportCommand(),
			searchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies global flag overrides.
func loadConfig(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, cli.Exit(fmt.Sprintf("load config: %v", err), 1)
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("raw-mail-dir") {
		cfg.RawMailDir = c.String("raw-mail-dir")
	}
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)
	return cfg, log, nil
}

func openDB(cfg config.Config) (*storage.DB, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("open database %s: %v", cfg.DBPath, err), 1)
	}
	return db, nil
}

func newProcessor(db *storage.DB, cfg config.Config, log *slog.Logger) *pipeline.ProcessingService {
	norm := normalize.New(cfg.Normalize(),
		normalize.WithParser(pricing.NewParser(cfg.Pricing())),
		normalize.WithLogger(log),
	)
	return pipeline.NewProcessingService(db, cfg, norm, log)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parsePriceCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse-price",
		Usage:     "Parse one or more price strings",
		ArgsUsage: "TEXT [TEXT...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "currency", Usage: "Default currency when none is detected"},
			&cli.BoolFlag{Name: "no-validate", Usage: "Skip min/max price validation"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one price text is required", 2)
			}
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			pcfg := cfg.Pricing()
			if cur := strings.TrimSpace(c.String("currency")); cur != "" {
				pcfg.DefaultCurrency = strings.ToUpper(cur)
			}
			if c.Bool("no-validate") {
				pcfg.ValidatePrices = false
			}
			parser := pricing.NewParser(pcfg)
			if c.NArg() == 1 {
				return writeJSON(c.App.Writer, parser.Parse(c.Args().First()))
			}
			return writeJSON(c.App.Writer, parser.ParseBatch(c.Args().Slice()))
		},
	}
}

func normalizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "normalize",
		Usage: "Normalize a JSON array of product records",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Value: "-", Usage: "Input JSON file, - for stdin"},
			&cli.StringFlag{Name: "out", Value: "-", Usage: "Output JSON file, - for stdout"},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}

			var in io.Reader = os.Stdin
			if path := c.String("in"); path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return cli.Exit(fmt.Sprintf("open input: %v", err), 1)
				}
				defer f.Close()
				in = f
			}
			var rows []map[string]any
			if err := json.NewDecoder(in).Decode(&rows); err != nil {
				return cli.Exit(fmt.Sprintf("decode input: %v", err), 1)
			}

			norm := normalize.New(cfg.Normalize(),
				normalize.WithParser(pricing.NewParser(cfg.Pricing())),
				normalize.WithLogger(log),
			)
			res := norm.NormalizeProducts(rows)

			out := c.App.Writer
			if path := c.String("out"); path != "-" {
				f, err := os.Create(path)
				if err != nil {
					return cli.Exit(fmt.Sprintf("create output: %v", err), 1)
				}
				defer f.Close()
				out = f
			}
			if err := writeJSON(out, res); err != nil {
				return err
			}
			if !res.Success {
				return cli.Exit(res.Error, 1)
			}
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Extract, normalize and store one price-list file, then export it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "Price-list file (xlsx, csv, pdf, html, txt, eml)"},
			&cli.StringFlag{Name: "type", Usage: "Input type; inferred from the extension when empty"},
			&cli.StringFlag{Name: "supplier", Usage: "Supplier name for rows without one"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "Output XLSX path"},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := newProcessor(db, cfg, log).ProcessFile(c.String("input"), c.String("type"), c.String("supplier"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("process %s: %v", c.String("input"), err), 1)
			}
			rows, err := db.GetExportRows(res.DocumentID)
			if err != nil {
				return err
			}
			if err := pipeline.ExportProductsToXLSX(rows, c.String("out")); err != nil {
				return cli.Exit(fmt.Sprintf("export: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "run done document=%d extracted=%d stored=%d merged=%d output=%s\n",
				res.DocumentID, res.Extracted, res.Stored, res.Normalize.Metadata.DuplicatesMerged, c.String("out"))
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export:xlsx",
		Usage: "Export stored products to XLSX",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "document", Usage: "Document id; 0 exports every document"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "Output XLSX path"},
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := db.GetExportRows(c.Int("document"))
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return cli.Exit(fmt.Sprintf("no products for document=%d", c.Int("document")), 1)
			}
			if err := pipeline.ExportProductsToXLSX(rows, c.String("out")); err != nil {
				return cli.Exit(fmt.Sprintf("export: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "exported %d rows to %s\n", len(rows), c.String("out"))
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "prices:search",
		Usage:     "Look up stored supplier prices for a product",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum results (default LOOKUP_LIMIT)"},
			&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
		},
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return cli.Exit("a search query is required", 2)
			}
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			products, err := db.ListStoredProducts()
			if err != nil {
				return err
			}
			limit := cfg.LookupLimit
			if c.IsSet("limit") {
				limit = c.Int("limit")
			}
			matches := lookup.NewMatcher(products, cfg.LookupMinScore).Search(query, limit)
			if c.Bool("json") {
				return writeJSON(c.App.Writer, matches)
			}
			if len(matches) == 0 {
				fmt.Fprintf(c.App.Writer, "no prices found for %q\n", query)
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(c.App.Writer, "%.2f  %-30s %12s %-4s /%-6s %s\n",
					m.Score, m.Product.Name, formatPrice(m.Product.Price), util.DerefString(m.Product.Currency),
					util.DerefString(m.Product.Unit), util.DerefString(m.Product.Supplier))
			}
			return nil
		},
	}
}

func formatPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
