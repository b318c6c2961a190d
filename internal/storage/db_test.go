package storage

import (
	"path/filepath"
	"testing"

	"monito/internal"
	"monito/internal/normalize"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsertDocumentIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	doc := internal.DocumentRow{Provider: "imap", ExternalID: "<a@b>", Subject: "Daftar harga", Hash: "h1", RawRef: "/tmp/a.eml"}
	first, err := db.UpsertDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	doc.Subject = "Daftar harga minggu ini"
	second, err := db.UpsertDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("got id %d want %d", second.ID, first.ID)
	}
	if second.Subject != "Daftar harga minggu ini" || second.Status != internal.StatusFetched {
		t.Fatalf("unexpected row: %+v", second)
	}

	pending, err := db.ListDocumentsByStatus(internal.StatusFetched, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("len=%d", len(pending))
	}
	if err := db.UpdateDocumentStatus(first.ID, internal.StatusProcessed); err != nil {
		t.Fatal(err)
	}
	pending, _ = db.ListDocumentsByStatus(internal.StatusFetched, 10)
	if len(pending) != 0 {
		t.Fatalf("len=%d after status update", len(pending))
	}
	if _, err := db.MustDocument("imap", "<missing>"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestInsertProductsAndExport(t *testing.T) {
	db := openTestDB(t)
	doc, err := db.UpsertDocument(internal.DocumentRow{Provider: "file", ExternalID: "list.csv", Sender: "Tani Makmur", Hash: "h", RawRef: "list.csv"})
	if err != nil {
		t.Fatal(err)
	}

	price, quality := 15000.0, 0.9
	products := []normalize.Product{
		{Name: "Tomat Merah", Unit: "kg", Price: &price, Currency: "IDR", Supplier: "Tani Makmur", QualityScore: &quality},
		{Name: "Cabai Rawit", PriceError: "No valid price pattern found"},
	}
	if err := db.InsertProducts(doc.ID, products); err != nil {
		t.Fatal(err)
	}

	stored, err := db.ListStoredProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("priced products len=%d", len(stored))
	}
	if stored[0].NormalizedKey != "tomat merah" || stored[0].Price == nil || *stored[0].Price != 15000 {
		t.Fatalf("unexpected stored product: %+v", stored[0])
	}

	rows, err := db.GetExportRows(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("export rows len=%d", len(rows))
	}
	if rows[0].Name != "Tomat Merah" || rows[0].DocumentSender != "Tani Makmur" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].PriceError == nil {
		t.Fatal("price error not stored")
	}

	if err := db.ClearDocumentProducts(doc.ID); err != nil {
		t.Fatal(err)
	}
	rows, _ = db.GetExportRows(0)
	if len(rows) != 0 {
		t.Fatalf("len=%d after clear", len(rows))
	}
}

func TestMetadataAndRuns(t *testing.T) {
	db := openTestDB(t)
	if v, err := db.GetMetadata("gmail_history"); err != nil || v != nil {
		t.Fatalf("got %v, %v want nil", v, err)
	}
	if err := db.SetMetadata("gmail_history", "42"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("gmail_history")
	if err != nil || v == nil || *v != "42" {
		t.Fatalf("got %v, %v want 42", v, err)
	}

	doc, _ := db.UpsertDocument(internal.DocumentRow{Provider: "file", ExternalID: "x", Hash: "h", RawRef: "x"})
	if err := db.InsertRun("trace", doc.ID, map[string]float64{"totalMs": 1}, map[string]int{"stored": 0}); err != nil {
		t.Fatal(err)
	}
	n, err := db.CountRuns(doc.ID)
	if err != nil || n != 1 {
		t.Fatalf("got %d, %v want 1", n, err)
	}
}
