package sms

import (
	"context"

	"github.com/shandysiswandi/riskguard/internal/notification/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"github.com/shandysiswandi/riskguard/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type SMS struct {
	client sms.SMS
	ins    instrument.Instrumentation
}

func New(client sms.SMS, ins instrument.Instrumentation) *SMS {
	return &SMS{client: client, ins: ins}
}

// SendCode texts the rendered body. The subject is not used on this channel.
func (s *SMS) SendCode(ctx context.Context, d entity.CodeDelivery) error {
	ctx, span := s.ins.Tracer("notification.outbound.sms").Start(ctx, "SendCode")
	defer span.End()

	span.SetAttributes(attribute.String("notification.channel", entity.ChannelSMS.String()))

	if err := s.client.Send(ctx, sms.Message{To: d.Address, Body: d.Body}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
