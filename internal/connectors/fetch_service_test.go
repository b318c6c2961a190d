package connectors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"monito/internal"
	"monito/internal/storage"
)

type fakeConnector struct {
	messages []internal.FetchedMailMessage
	err      error
	label    string
	max      int
}

func (f *fakeConnector) FetchInbox(_ context.Context, label string, max int) ([]internal.FetchedMailMessage, error) {
	f.label, f.max = label, max
	return f.messages, f.err
}

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFetchAndStore(t *testing.T) {
	db := openDB(t)
	rawDir := filepath.Join(t.TempDir(), "raw")
	conn := &fakeConnector{messages: []internal.FetchedMailMessage{
		{Provider: "imap", MessageID: "<a@x>", Subject: "Daftar harga", From: "sales@x.id", ReceivedAt: "2026-06-01T00:00:00Z", Raw: []byte("Subject: Daftar harga\r\n\r\nBeras 13.000/kg\r\n")},
		{Provider: "imap", MessageID: "<b@x>", Subject: "Halo", From: "sales@x.id", ReceivedAt: "2026-06-01T00:00:00Z", Raw: []byte("Subject: Halo\r\n\r\nhai\r\n")},
	}}

	svc := NewFetchService(db, rawDir, conn, nil)
	res, err := svc.FetchAndStore(context.Background(), "INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Fetched != 2 || res.Stored != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if conn.label != "INBOX" || conn.max != 10 {
		t.Fatalf("connector called with %q/%d", conn.label, conn.max)
	}

	doc, err := db.GetDocument("imap", "<a@x>")
	if err != nil || doc == nil {
		t.Fatalf("document missing: %v", err)
	}
	if doc.Status != internal.StatusFetched || len(doc.Hash) != 64 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	raw, err := os.ReadFile(doc.RawRef)
	if err != nil || string(raw) != string(conn.messages[0].Raw) {
		t.Fatalf("raw mail not stored: %v", err)
	}

	if _, err := svc.FetchAndStore(context.Background(), "INBOX", 10); err != nil {
		t.Fatal(err)
	}
	pending, _ := db.ListDocumentsByStatus(internal.StatusFetched, 10)
	if len(pending) != 2 {
		t.Fatalf("refetch duplicated documents: %d", len(pending))
	}
}

func TestFetchAndStoreConnectorError(t *testing.T) {
	db := openDB(t)
	boom := errors.New("mailbox unavailable")
	svc := NewFetchService(db, t.TempDir(), &fakeConnector{err: boom}, nil)
	if _, err := svc.FetchAndStore(context.Background(), "INBOX", 5); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}
