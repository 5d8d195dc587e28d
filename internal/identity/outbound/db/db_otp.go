package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/goerror"
)

// SupersedeAndInsert serializes on the principal with a transaction scoped
// advisory lock, drops the previous slot and inserts rec.
func (s *DB) SupersedeAndInsert(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := s.startSpan(ctx, "SupersedeAndInsert")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, rec.Principal); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM identity_otp_records WHERE principal = $1`, rec.Principal); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO identity_otp_records (id, principal, code_hash, address, channel, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`,
		rec.ID, rec.Principal, rec.CodeHash, rec.Address, rec.Channel, rec.ExpiresAt, rec.CreatedAt,
	); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *DB) GetActive(ctx context.Context, principal string) (_ *entity.OTPRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetActive")
	defer func() { s.endSpan(span, err) }()

	var rec entity.OTPRecord
	err = s.conn.QueryRow(ctx, `
		SELECT id, principal, code_hash, address, channel, expires_at, used, created_at
		FROM identity_otp_records
		WHERE principal = $1 AND used = FALSE`,
		principal,
	).Scan(&rec.ID, &rec.Principal, &rec.CodeHash, &rec.Address, &rec.Channel, &rec.ExpiresAt, &rec.Used, &rec.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &rec, nil
}

// MarkUsed flips the used flag of exactly rec. Zero affected rows means the
// record was consumed or superseded in between.
func (s *DB) MarkUsed(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := s.startSpan(ctx, "MarkUsed")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE identity_otp_records SET used = TRUE WHERE id = $1 AND used = FALSE`, rec.ID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrConflict
	}

	return nil
}
