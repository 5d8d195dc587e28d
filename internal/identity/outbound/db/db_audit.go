package db

import (
	"context"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/valueobject"
)

// Record stores one audit event in identity_audit_logs.
func (s *DB) Record(ctx context.Context, ev entity.AuditEvent) (err error) {
	ctx, span := s.startSpan(ctx, "RecordAudit")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO identity_audit_logs (id, principal, action, details, correlation_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.Principal, ev.Action.String(), valueobject.JSONMap(ev.Details), ev.CorrelationID, ev.OccurredAt,
	)
	return s.mapError(err)
}
