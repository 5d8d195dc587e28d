package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
)

func (s *Usecase) newAuditEvent(ctx context.Context, principal string, action entity.AuditAction, details map[string]any) entity.AuditEvent {
	if details == nil {
		details = map[string]any{}
	}

	return entity.AuditEvent{
		ID:            s.uuid.Generate(),
		Principal:     principal,
		Action:        action,
		Details:       details,
		OccurredAt:    s.clock.Now(),
		CorrelationID: instrument.GetCorrelationID(ctx),
	}
}

// recordAudit writes events in order on a background task. Failures are
// logged and never reach the caller.
func (s *Usecase) recordAudit(ctx context.Context, events ...entity.AuditEvent) {
	if len(events) == 0 {
		return
	}

	scheduled := s.goroutine.Go(context.WithoutCancel(ctx), "identity.record_audit", func(ctx context.Context) error {
		for _, ev := range events {
			if err := s.audit.Record(ctx, ev); err != nil {
				slog.ErrorContext(ctx, "failed to record audit event",
					"action", ev.Action.String(),
					"principal", ev.Principal,
					"event_id", ev.ID,
					"error", err,
				)
			}
		}
		return nil
	})
	if !scheduled {
		for _, ev := range events {
			slog.ErrorContext(ctx, "audit event was not scheduled, event dropped",
				"action", ev.Action.String(),
				"principal", ev.Principal,
				"event_id", ev.ID,
			)
		}
	}
}
