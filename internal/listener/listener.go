package listener

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"monito/internal"
	"monito/internal/config"
	"monito/internal/connectors"
	gmailconnector "monito/internal/connectors/gmail"
	imapconnector "monito/internal/connectors/imap"
	"monito/internal/pipeline"
	"monito/internal/storage"
)

// ConnectorFactory builds the mail connector for a provider name.
type ConnectorFactory func(ctx context.Context, provider string) (connectors.MailConnector, error)

// Service polls a supplier mailbox, processes new price lists and exports
// each processed document to XLSX.
type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.ProcessingService
	factory   ConnectorFactory
	log       *slog.Logger
}

type Option func(*Service)

func WithConnectorFactory(f ConnectorFactory) Option {
	return func(s *Service) { s.factory = f }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(db *storage.DB, cfg config.Config, processor *pipeline.ProcessingService, opts ...Option) *Service {
	s := &Service{db: db, cfg: cfg, processor: processor, log: slog.Default()}
	s.factory = s.defaultConnector
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CycleResult summarizes one poll.
type CycleResult struct {
	Provider  string
	Fetched   int
	Stored    int
	Processed int
	Products  int
	Exported  int
}

// Run polls until ctx is cancelled. Cycle errors are logged and the next
// cycle runs on schedule.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.MailListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			s.log.Error("listener cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	res := CycleResult{Provider: provider}

	mailConnector, err := s.factory(ctx, provider)
	if err != nil {
		return res, err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector, s.log)
	fetchResult, err := fetchService.FetchAndStore(ctx, s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return res, fmt.Errorf("fetch %s: %w", provider, err)
	}
	res.Fetched, res.Stored = fetchResult.Fetched, fetchResult.Stored

	res.Processed, res.Products, err = s.processor.ProcessPending(s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return res, fmt.Errorf("process %s: %w", provider, err)
	}

	if s.cfg.MailListenerAutoExport {
		res.Exported, err = s.exportProcessed(provider)
		if err != nil {
			return res, err
		}
	}

	s.log.Info("listener cycle done",
		"provider", provider,
		"fetched", res.Fetched,
		"stored", res.Stored,
		"processed", res.Processed,
		"products", res.Products,
		"exported", res.Exported,
	)
	return res, nil
}

func (s *Service) exportProcessed(provider string) (int, error) {
	docs, err := s.db.ListDocumentsByStatus(internal.StatusProcessed, 200)
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, doc := range docs {
		if doc.Provider != provider {
			continue
		}
		rows, err := s.db.GetExportRows(doc.ID)
		if err != nil {
			return exported, err
		}
		if len(rows) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s.xlsx", doc.ID, sanitizeMessageID(doc.ExternalID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := pipeline.ExportProductsToXLSX(rows, outputPath); err != nil {
			return exported, fmt.Errorf("export document %d: %w", doc.ID, err)
		}
		if err := s.db.UpdateDocumentStatus(doc.ID, internal.StatusExported); err != nil {
			return exported, err
		}
		exported++
	}
	return exported, nil
}

func (s *Service) defaultConnector(ctx context.Context, provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(ctx, s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_", "@", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
