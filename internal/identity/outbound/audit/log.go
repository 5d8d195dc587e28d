package audit

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
)

// Log writes each event as a structured slog line.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("component", "audit")}
}

func (s *Log) Record(ctx context.Context, ev entity.AuditEvent) error {
	s.logger.InfoContext(ctx, "audit event",
		"event_id", ev.ID,
		"action", ev.Action.String(),
		"principal", ev.Principal,
		"details", ev.Details,
		"occurred_at", ev.OccurredAt,
	)
	return nil
}
