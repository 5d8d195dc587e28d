package mail

import (
	"context"
	"io"
)

// Message is one outgoing email. Code deliveries only set To, Subject and
// TextBody; the remaining fields are honored by both providers.
type Message struct {
	// From overrides the provider's configured sender.
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mail is an email provider. Send must return once ctx is done.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
