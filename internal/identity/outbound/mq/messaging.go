package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"github.com/shandysiswandi/riskguard/internal/pkg/messaging"
	"github.com/shandysiswandi/riskguard/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	keyOfCorrelationID string = "cID"
	keyOfAction        string = "action"
)

type Messaging struct {
	client      messaging.Publisher
	ins         instrument.Instrumentation
	destination string
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation, destination string) *Messaging {
	if destination == "" {
		destination = event.AuditDestination
	}
	return &Messaging{client: client, ins: ins, destination: destination}
}

// Record publishes ev as JSON keyed by principal, so one principal's events
// stay ordered on partitioned brokers.
func (m *Messaging) Record(ctx context.Context, ev entity.AuditEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishAuditEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.destination", m.destination),
		attribute.String("audit.action", ev.Action.String()),
	)

	cID := ev.CorrelationID
	if cID == "" {
		cID = instrument.GetCorrelationID(ctx)
	}

	body, err := json.Marshal(event.AuditMessage{
		ID:            ev.ID,
		User:          ev.Principal,
		Action:        ev.Action.String(),
		Details:       ev.Details,
		Timestamp:     ev.OccurredAt,
		CorrelationID: cID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := m.client.Publish(ctx, m.destination, messaging.Message{
		Body: body,
		Key:  []byte(ev.Principal),
		Headers: []messaging.Header{
			{Key: keyOfCorrelationID, Value: cID},
			{Key: keyOfAction, Value: ev.Action.String()},
		},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
