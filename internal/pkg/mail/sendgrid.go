package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	// ErrSendGridAPIKeyRequired is returned when the API key is empty.
	ErrSendGridAPIKeyRequired = errors.New("sendgrid api key is required")
	// ErrSendGridRejected is returned when SendGrid answers with a non-2xx status.
	ErrSendGridRejected = errors.New("sendgrid rejected the message")
)

// SendGridConfig configures the SendGrid implementation.
type SendGridConfig struct {
	APIKey   string
	From     string
	FromName string
	// Sandbox asks SendGrid to validate the request without delivering it.
	Sandbox bool
}

// SendGrid is a Mail implementation backed by the SendGrid v3 API.
type SendGrid struct {
	client   *sendgrid.Client
	from     string
	fromName string
	sandbox  bool
}

// NewSendGrid constructs a SendGrid mail sender.
func NewSendGrid(cfg SendGridConfig) (*SendGrid, error) {
	if cfg.APIKey == "" {
		return nil, ErrSendGridAPIKeyRequired
	}

	return &SendGrid{
		client:   sendgrid.NewSendClient(cfg.APIKey),
		from:     cfg.From,
		fromName: cfg.FromName,
		sandbox:  cfg.Sandbox,
	}, nil
}

// Send delivers a message via SendGrid. Only the first To recipient is the
// primary; remaining To, Cc and Bcc entries are added to the same personalization.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.from
	}
	if from == "" {
		return ErrNoSender
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(s.fromName, from),
		msg.Subject,
		sgmail.NewEmail("", msg.To[0]),
		msg.TextBody,
		msg.HTMLBody,
	)

	if p := message.Personalizations; len(p) > 0 {
		for _, to := range msg.To[1:] {
			p[0].AddTos(sgmail.NewEmail("", to))
		}
		for _, cc := range msg.Cc {
			p[0].AddCCs(sgmail.NewEmail("", cc))
		}
		for _, bcc := range msg.Bcc {
			p[0].AddBCCs(sgmail.NewEmail("", bcc))
		}
	}

	if s.sandbox {
		ms := sgmail.NewMailSettings()
		ms.SetSandboxMode(sgmail.NewSetting(true))
		message.MailSettings = ms
	}

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d: %s", ErrSendGridRejected, resp.StatusCode, resp.Body)
	}

	return nil
}

// Close implements io.Closer for interface compatibility.
func (s *SendGrid) Close() error {
	return nil
}
