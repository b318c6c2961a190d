package connectors

import (
	"testing"
	"time"
)

func TestParseHeaders(t *testing.T) {
	raw := "From: =?UTF-8?Q?Toko_Sayur_Seg=C3=A4r?= <order@seger.id>\r\n" +
		"Subject: =?UTF-8?B?RGFmdGFyIGhhcmdh?=\r\n" +
		"Message-ID: <m-1@seger.id>\r\n" +
		"Date: Tue, 02 Jun 2026 09:30:00 +0700\r\n" +
		"Content-Type: text/plain\r\n\r\nisi\r\n"

	h, err := ParseHeaders([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if h.Subject != "Daftar harga" {
		t.Fatalf("subject=%q", h.Subject)
	}
	if h.MessageID != "<m-1@seger.id>" {
		t.Fatalf("message id=%q", h.MessageID)
	}
	if got := ReceivedAt(h.Date); got != "2026-06-02T02:30:00Z" {
		t.Fatalf("received=%s", got)
	}
}

func TestReceivedAtZero(t *testing.T) {
	got, err := time.Parse(time.RFC3339, ReceivedAt(time.Time{}))
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(got) > time.Minute {
		t.Fatalf("zero time should fall back to now, got %s", got)
	}
}
