package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"monito/internal"
	"monito/internal/normalize"
	"monito/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  externalId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, externalId)
);

CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  name TEXT NOT NULL,
  normalizedKey TEXT NOT NULL,
  unit TEXT,
  unitDimension TEXT,
  price REAL,
  priceMin REAL,
  priceMax REAL,
  priceType TEXT,
  currency TEXT,
  category TEXT,
  supplier TEXT,
  qualityScore REAL NOT NULL DEFAULT 0,
  mergedFrom INTEGER NOT NULL DEFAULT 0,
  priceError TEXT,
  raw_json TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_products_key ON products(normalizedKey);
CREATE INDEX IF NOT EXISTS idx_products_document ON products(documentId);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  documentId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

const documentColumns = `id, provider, externalId, subject, sender, receivedAt, hash, status, rawRef`

func scanDocument(row interface{ Scan(...any) error }) (internal.DocumentRow, error) {
	var doc internal.DocumentRow
	var subject, sender, receivedAt sql.NullString
	err := row.Scan(&doc.ID, &doc.Provider, &doc.ExternalID, &subject, &sender, &receivedAt, &doc.Hash, &doc.Status, &doc.RawRef)
	doc.Subject, doc.Sender, doc.ReceivedAt = subject.String, sender.String, receivedAt.String
	return doc, err
}

func (d *DB) UpsertDocument(doc internal.DocumentRow) (internal.DocumentRow, error) {
	status := doc.Status
	if status == "" {
		status = internal.StatusFetched
	}
	_, err := d.conn.Exec(`
INSERT INTO documents (provider, externalId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, externalId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, doc.Provider, doc.ExternalID, doc.Subject, doc.Sender, doc.ReceivedAt, doc.Hash, status, doc.RawRef)
	if err != nil {
		return internal.DocumentRow{}, err
	}

	row, err := d.GetDocument(doc.Provider, doc.ExternalID)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	if row == nil {
		return internal.DocumentRow{}, errors.New("failed to upsert document")
	}
	return *row, nil
}

func (d *DB) GetDocument(provider, externalID string) (*internal.DocumentRow, error) {
	doc, err := scanDocument(d.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE provider = ? AND externalId = ?`, provider, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *DB) GetDocumentByID(id int) (*internal.DocumentRow, error) {
	doc, err := scanDocument(d.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *DB) MustDocument(provider, externalID string) (internal.DocumentRow, error) {
	row, err := d.GetDocument(provider, externalID)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	if row == nil {
		return internal.DocumentRow{}, fmt.Errorf("document not found: provider=%s externalId=%s", provider, externalID)
	}
	return *row, nil
}

func (d *DB) ListDocumentsByStatus(status string, limit int) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`SELECT `+documentColumns+` FROM documents WHERE status = ? ORDER BY receivedAt ASC LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (d *DB) UpdateDocumentStatus(documentID int, status string) error {
	_, err := d.conn.Exec(`UPDATE documents SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, documentID)
	return err
}

func (d *DB) ClearDocumentProducts(documentID int) error {
	_, err := d.conn.Exec(`DELETE FROM products WHERE documentId = ?`, documentID)
	return err
}

// InsertProducts loads one document's normalized products in a single
// transaction.
func (d *DB) InsertProducts(documentID int, products []normalize.Product) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (
  documentId, name, normalizedKey, unit, unitDimension, price, priceMin, priceMax,
  priceType, currency, category, supplier, qualityScore, mergedFrom, priceError, raw_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		rawJSON, err := json.Marshal(p.ToMap())
		if err != nil {
			return fmt.Errorf("encode product %q: %w", p.Name, err)
		}
		var priceMin, priceMax *float64
		var priceType *string
		if p.PriceRange != nil {
			priceMin, priceMax = &p.PriceRange.Min, &p.PriceRange.Max
		}
		if p.ParsedPrice != nil {
			priceType = util.StringPtr(string(p.ParsedPrice.Type))
			if priceMin == nil {
				priceMin, priceMax = p.ParsedPrice.MinPrice, p.ParsedPrice.MaxPrice
			}
		}
		quality := 0.0
		if p.QualityScore != nil {
			quality = *p.QualityScore
		}
		if _, err := stmt.Exec(
			documentID, p.Name, util.NormalizeKey(p.Name),
			nullable(p.Unit), nullable(string(p.UnitDimension)),
			p.Price, priceMin, priceMax, priceType,
			nullable(p.Currency), nullable(p.Category), nullable(p.Supplier),
			quality, p.MergedFrom, nullable(p.PriceError), string(rawJSON),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

const productColumns = `p.id, p.documentId, p.name, p.normalizedKey, p.unit, p.unitDimension,
  p.price, p.priceMin, p.priceMax, p.priceType, p.currency, p.category, p.supplier,
  p.qualityScore, p.mergedFrom, p.priceError, p.raw_json, p.createdAt`

func scanProduct(row interface{ Scan(...any) error }, extra ...any) (internal.StoredProduct, error) {
	var p internal.StoredProduct
	dest := []any{
		&p.ID, &p.DocumentID, &p.Name, &p.NormalizedKey, &p.Unit, &p.UnitDimension,
		&p.Price, &p.PriceMin, &p.PriceMax, &p.PriceType, &p.Currency, &p.Category, &p.Supplier,
		&p.QualityScore, &p.MergedFrom, &p.PriceError, &p.RawJSON, &p.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return p, err
}

// ListStoredProducts returns every stored product that carries a price.
func (d *DB) ListStoredProducts() ([]internal.StoredProduct, error) {
	rows, err := d.conn.Query(`SELECT ` + productColumns + ` FROM products p WHERE p.price IS NOT NULL ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.StoredProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetExportRows lists one document's products, best quality first. A
// documentID of 0 exports every document.
func (d *DB) GetExportRows(documentID int) ([]internal.ProductExportRow, error) {
	rows, err := d.conn.Query(`
SELECT `+productColumns+`, COALESCE(d.subject, ''), COALESCE(d.sender, '')
FROM products p
JOIN documents d ON d.id = p.documentId
WHERE ? = 0 OR p.documentId = ?
ORDER BY p.documentId ASC, p.qualityScore DESC, p.name ASC
`, documentID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ProductExportRow
	for rows.Next() {
		var row internal.ProductExportRow
		p, err := scanProduct(rows, &row.DocumentSubject, &row.DocumentSender)
		if err != nil {
			return nil, err
		}
		row.StoredProduct = p
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, documentID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, documentId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, documentID, string(timingsJSON), string(countsJSON))
	return err
}

// CountRuns reports how many runs were recorded for a document.
func (d *DB) CountRuns(documentID int) (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM runs WHERE documentId = ?`, documentID).Scan(&n)
	return n, err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
