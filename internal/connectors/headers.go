package connectors

import (
	"bytes"
	"net/mail"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
)

// Headers are the envelope fields stored with every fetched message.
type Headers struct {
	Subject   string
	From      string
	MessageID string
	Date      time.Time
}

// ParseHeaders decodes the envelope of a raw RFC 5322 message. Encoded words
// in Subject and From are decoded. Date is zero when missing or unparsable.
func ParseHeaders(raw []byte) (Headers, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Headers{}, err
	}
	h := Headers{
		Subject:   env.GetHeader("Subject"),
		From:      env.GetHeader("From"),
		MessageID: strings.TrimSpace(env.GetHeader("Message-ID")),
	}
	if date := env.GetHeader("Date"); date != "" {
		if t, err := mail.ParseDate(date); err == nil {
			h.Date = t
		}
	}
	return h, nil
}

// ReceivedAt formats t as RFC 3339 UTC, falling back to now for zero times.
func ReceivedAt(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}
