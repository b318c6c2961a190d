package gmail

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"monito/internal/config"
)

func TestDecodeBase64URL(t *testing.T) {
	raw := "Subject: harga?\r\n\r\n>>> Beras 13.000\r\n"
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.URLEncoding} {
		got, err := decodeBase64URL(enc.EncodeToString([]byte(raw)))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != raw {
			t.Fatalf("got %q", got)
		}
	}
	if _, err := decodeBase64URL("!!"); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

func TestNewConnectorRequiresCredentials(t *testing.T) {
	_, err := NewConnector(context.Background(), config.Config{GmailClientID: "id"})
	if err == nil || !strings.Contains(err.Error(), "GMAIL_CLIENT_SECRET") {
		t.Fatalf("err=%v", err)
	}
}
