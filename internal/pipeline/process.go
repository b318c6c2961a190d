package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"monito/internal"
	"monito/internal/config"
	"monito/internal/normalize"
	"monito/internal/storage"
)

type ProcessingService struct {
	db         *storage.DB
	cfg        config.Config
	normalizer *normalize.Normalizer
	log        *slog.Logger
}

func NewProcessingService(db *storage.DB, cfg config.Config, normalizer *normalize.Normalizer, log *slog.Logger) *ProcessingService {
	if log == nil {
		log = slog.Default()
	}
	return &ProcessingService{db: db, cfg: cfg, normalizer: normalizer, log: log}
}

type ProcessResult struct {
	DocumentID int
	Extracted  int
	Stored     int
	Skipped    bool
	Normalize  normalize.Result
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	doc, err := s.db.MustDocument(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessDocument(doc)
}

func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListDocumentsByStatus(internal.StatusFetched, limit)
	if err != nil {
		return 0, 0, err
	}
	processedDocs := 0
	storedProducts := 0
	for _, doc := range pending {
		if provider != "" && doc.Provider != provider {
			continue
		}
		res, err := s.ProcessDocument(doc)
		if err != nil {
			return processedDocs, storedProducts, err
		}
		processedDocs++
		storedProducts += res.Stored
	}
	return processedDocs, storedProducts, nil
}

// ProcessDocument extracts, normalizes and stores the products of one raw
// email. Messages that do not look like price lists are marked skipped.
func (s *ProcessingService) ProcessDocument(doc internal.DocumentRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(doc.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	parsed, err := ExtractRowsFromEmailRaw(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	detect := DetectPriceList(firstNonEmpty(parsed.Subject, doc.Subject), parsed.Text, parsed.HTML, parsed.AttachmentNames)
	if err := s.db.ClearDocumentProducts(doc.ID); err != nil {
		return ProcessResult{}, err
	}

	if !detect.IsPriceList {
		s.log.Info("document skipped", "document", doc.ID, "score", detect.Score)
		_ = s.db.UpdateDocumentStatus(doc.ID, internal.StatusSkipped)
		_ = s.db.InsertRun(traceID(), doc.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"extracted": 0, "stored": 0})
		return ProcessResult{DocumentID: doc.ID, Skipped: true}, nil
	}

	supplier := SenderName(firstNonEmpty(parsed.From, doc.Sender))
	return s.store(doc, parsed.Rows, supplier, start)
}

// ProcessFile runs a price-list file through the pipeline and records it as
// a "file" document keyed by its absolute path.
func (s *ProcessingService) ProcessFile(path, inputType, supplier string) (ProcessResult, error) {
	start := time.Now()
	if inputType == "" {
		inputType = InferInputType(path)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return ProcessResult{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ProcessResult{}, err
	}

	rows, err := ExtractRowsFromInput(inputType, path)
	if err != nil {
		return ProcessResult{}, err
	}

	sum := sha256.Sum256(blob)
	doc, err := s.db.UpsertDocument(internal.DocumentRow{
		Provider:   "file",
		ExternalID: abs,
		Subject:    filepath.Base(path),
		Sender:     supplier,
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
		Hash:       hex.EncodeToString(sum[:]),
		RawRef:     abs,
	})
	if err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.ClearDocumentProducts(doc.ID); err != nil {
		return ProcessResult{}, err
	}
	return s.store(doc, rows, supplier, start)
}

func (s *ProcessingService) store(doc internal.DocumentRow, rows []internal.ExtractedRow, supplier string, start time.Time) (ProcessResult, error) {
	res := ProcessResult{DocumentID: doc.ID, Extracted: len(rows)}
	extractedAt := time.Now()

	if len(rows) > 0 {
		res.Normalize = s.normalizer.NormalizeProducts(RowsToRecords(rows, supplier))
		if err := s.db.InsertProducts(doc.ID, res.Normalize.Products); err != nil {
			return ProcessResult{}, err
		}
		res.Stored = len(res.Normalize.Products)
	}

	if err := s.db.UpdateDocumentStatus(doc.ID, internal.StatusProcessed); err != nil {
		return ProcessResult{}, err
	}

	meta := res.Normalize.Metadata
	stats := res.Normalize.Stats
	_ = s.db.InsertRun(traceID(), doc.ID,
		map[string]float64{
			"extractMs":   float64(extractedAt.Sub(start).Milliseconds()),
			"normalizeMs": meta.ProcessingTimeMs,
			"totalMs":     float64(time.Since(start).Milliseconds()),
		},
		map[string]int{
			"extracted":   res.Extracted,
			"stored":      res.Stored,
			"merged":      meta.DuplicatesMerged,
			"priceErrors": stats.PriceErrors,
			"failures":    stats.Failures,
		})

	s.log.Info("document processed",
		"document", doc.ID,
		"extracted", res.Extracted,
		"stored", res.Stored,
		"merged", meta.DuplicatesMerged,
		"avg_quality", meta.AverageQuality,
	)
	return res, nil
}

func traceID() string {
	return uuid.NewString()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
