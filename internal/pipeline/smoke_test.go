package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"monito/internal"
	"monito/internal/config"
	"monito/internal/normalize"
	"monito/internal/storage"
)

const sampleEmail = "From: \"CV Tani Makmur\" <sales@tanimakmur.co.id>\r\n" +
	"To: buyer@example.com\r\n" +
	"Subject: Daftar harga sayur\r\n" +
	"Message-ID: <fixture-1@example.com>\r\n" +
	"Date: Mon, 08 Jun 2026 08:00:00 +0700\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Selamat pagi,\r\n" +
	"Tomat merah 15.000/kg\r\n" +
	"Tomat  merah 15.500/kg\r\n" +
	"Cabai rawit 45k\r\n" +
	"Terima kasih\r\n"

func newTestService(t *testing.T) (*ProcessingService, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	cfg, _ := config.Load()
	return NewProcessingService(db, cfg, normalize.New(normalize.DefaultConfig()), nil), db
}

func TestSmokeEmailToXLSX(t *testing.T) {
	tmp := t.TempDir()
	proc, db := newTestService(t)

	rawPath := filepath.Join(tmp, "fixture.eml")
	if err := os.WriteFile(rawPath, []byte(sampleEmail), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := db.UpsertDocument(internal.DocumentRow{
		Provider: "imap", ExternalID: "<fixture-1@example.com>", Subject: "Daftar harga sayur",
		Sender: "sales@tanimakmur.co.id", ReceivedAt: "2026-06-08T01:00:00Z", Hash: "hash", RawRef: rawPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := proc.ProcessDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped || res.Extracted != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Stored != 2 {
		t.Fatalf("stored=%d want 2 after merging the tomato rows", res.Stored)
	}

	rows, err := db.GetExportRows(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("export rows=%d", len(rows))
	}
	var tomato *internal.ProductExportRow
	for i := range rows {
		if rows[i].Name == "Tomat Merah" {
			tomato = &rows[i]
		}
	}
	if tomato == nil {
		t.Fatalf("merged tomato row missing: %+v", rows)
	}
	if tomato.Price == nil || *tomato.Price != 15250 || tomato.MergedFrom != 2 {
		t.Fatalf("unexpected merge: %+v", tomato.StoredProduct)
	}
	if tomato.Supplier == nil || *tomato.Supplier != "Tani Makmur" {
		t.Fatalf("supplier=%v", tomato.Supplier)
	}

	stored, _ := db.GetDocumentByID(doc.ID)
	if stored.Status != internal.StatusProcessed {
		t.Fatalf("status=%s", stored.Status)
	}
	if n, _ := db.CountRuns(doc.ID); n != 1 {
		t.Fatalf("runs=%d", n)
	}

	out := filepath.Join(tmp, "result.xlsx")
	if err := ExportProductsToXLSX(rows, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestProcessDocumentSkipsNonPriceList(t *testing.T) {
	tmp := t.TempDir()
	proc, db := newTestService(t)

	raw := "From: a@example.com\r\nSubject: Rapat\r\nContent-Type: text/plain\r\n\r\nSampai jumpa besok.\r\n"
	rawPath := filepath.Join(tmp, "note.eml")
	if err := os.WriteFile(rawPath, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := db.UpsertDocument(internal.DocumentRow{Provider: "imap", ExternalID: "<n@x>", Hash: "h", RawRef: rawPath})
	if err != nil {
		t.Fatal(err)
	}

	processed, stored, err := proc.ProcessPending(10, "imap")
	if err != nil {
		t.Fatal(err)
	}
	if processed != 1 || stored != 0 {
		t.Fatalf("processed=%d stored=%d", processed, stored)
	}
	row, _ := db.GetDocumentByID(doc.ID)
	if row.Status != internal.StatusSkipped {
		t.Fatalf("status=%s", row.Status)
	}
}

func TestProcessFileCSV(t *testing.T) {
	tmp := t.TempDir()
	proc, db := newTestService(t)

	path := filepath.Join(tmp, "harga.csv")
	csv := "Nama,Satuan,Harga,Kategori\nBeras premium,kilogram,\"Rp 13.500\",Beras\nGula pasir,kg,16000,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := proc.ProcessFile(path, "", "PT Sumber Pangan")
	if err != nil {
		t.Fatal(err)
	}
	if res.Extracted != 2 || res.Stored != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	products, err := db.ListStoredProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("len=%d", len(products))
	}
	first := products[0]
	if first.Name != "Beras Premium" || *first.Unit != "kg" || *first.Price != 13500 || *first.Supplier != "Sumber Pangan" {
		t.Fatalf("unexpected product: %+v", first)
	}
	if first.Category == nil || *first.Category != "Grains" {
		t.Fatalf("category=%v", first.Category)
	}
}
