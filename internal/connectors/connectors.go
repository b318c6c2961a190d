package connectors

import (
	"context"

	"monito/internal"
)

// MailConnector pulls raw supplier emails from one mailbox provider.
type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}
