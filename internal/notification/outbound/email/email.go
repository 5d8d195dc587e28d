package email

import (
	"context"

	"github.com/shandysiswandi/riskguard/internal/notification/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"github.com/shandysiswandi/riskguard/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// SendCode mails the rendered code as plain text.
func (m *Mail) SendCode(ctx context.Context, d entity.CodeDelivery) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "SendCode")
	defer span.End()

	span.SetAttributes(attribute.String("notification.channel", entity.ChannelEmail.String()))

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{d.Address},
		Subject:  d.Subject,
		TextBody: d.Body,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
