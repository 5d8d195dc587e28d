package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS identity_otp_records (
		id          BIGINT PRIMARY KEY,
		principal   VARCHAR(128) NOT NULL,
		code_hash   VARCHAR(128) NOT NULL,
		address     VARCHAR(254) NOT NULL DEFAULT '',
		channel     VARCHAR(16)  NOT NULL DEFAULT '',
		expires_at  TIMESTAMPTZ  NOT NULL,
		used        BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS identity_otp_records_active_principal
		ON identity_otp_records (principal) WHERE used = FALSE`,
	`CREATE TABLE IF NOT EXISTS identity_audit_logs (
		id              UUID PRIMARY KEY,
		principal       VARCHAR(128) NOT NULL,
		action          VARCHAR(32)  NOT NULL,
		details         JSONB        NOT NULL DEFAULT '{}'::jsonb,
		correlation_id  VARCHAR(64)  NOT NULL DEFAULT '',
		occurred_at     TIMESTAMPTZ  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS identity_audit_logs_principal_occurred
		ON identity_audit_logs (principal, occurred_at DESC)`,
}

// Migrate creates the identity tables when they do not exist yet.
func (s *DB) Migrate(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Migrate")
	defer func() { s.endSpan(span, err) }()

	for i, stmt := range schema {
		if _, err = s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate identity schema step %d: %w", i, err)
		}
	}

	return nil
}
