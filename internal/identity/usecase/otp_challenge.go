package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/goerror"
)

func otpDigestInput(principal, code string) string {
	return principal + ":" + code
}

// issueOTP replaces the principal's OTP slot with a fresh code and schedules
// delivery. The record is durable before delivery starts; a failed delivery
// leaves the code valid.
func (s *Usecase) issueOTP(ctx context.Context, principal, address string) (string, string, error) {
	ctx, span := s.startSpan(ctx, "issueOTP")
	defer span.End()

	code, err := s.codes.Generate()
	if err != nil {
		return "", "", fmt.Errorf("generate otp: %w", err)
	}

	digest, err := s.hmac.Hash(otpDigestInput(principal, code))
	if err != nil {
		return "", "", fmt.Errorf("hash otp: %w", err)
	}

	now := s.clock.Now()
	rec := entity.OTPRecord{
		ID:        s.uid.Generate(),
		Principal: principal,
		CodeHash:  string(digest),
		Address:   address,
		Channel:   s.notifier.ChannelFor(address),
		ExpiresAt: now.Add(s.otpPolicy.Expiry),
		CreatedAt: now,
	}

	if err := s.repoOTP.SupersedeAndInsert(ctx, rec); err != nil {
		return "", "", fmt.Errorf("store otp: %w", err)
	}

	expiry := s.otpPolicy.Expiry
	scheduled := s.goroutine.Go(context.WithoutCancel(ctx), "identity.deliver_otp", func(ctx context.Context) error {
		if err := s.notifier.Send(ctx, address, code, expiry); err != nil {
			slog.ErrorContext(ctx, "failed to deliver otp", "principal", principal, "channel", rec.Channel, "error", err)
		}
		return nil
	})
	if !scheduled {
		slog.ErrorContext(ctx, "otp delivery was not scheduled, code not sent",
			"principal", principal,
			"channel", rec.Channel,
			"otp_id", rec.ID,
		)
	}

	return code, rec.Channel, nil
}

// verifyOTP consumes the principal's active code. Every rejection returns
// false with a nil error; only storage faults return an error.
func (s *Usecase) verifyOTP(ctx context.Context, principal, submitted string) (bool, error) {
	ctx, span := s.startSpan(ctx, "verifyOTP")
	defer span.End()

	rec, err := s.repoOTP.GetActive(ctx, principal)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no otp issued for principal", "principal", principal)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get otp: %w", err)
	}

	if st := rec.Status(s.clock.Now()); st != entity.OTPStatusActive {
		slog.WarnContext(ctx, "otp is not active", "principal", principal, "status", st.String())
		return false, nil
	}

	if !s.hmac.Verify(rec.CodeHash, otpDigestInput(principal, submitted)) {
		slog.WarnContext(ctx, "otp code mismatch", "principal", principal)
		return false, nil
	}

	err = s.repoOTP.MarkUsed(ctx, *rec)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "otp consumed concurrently", "principal", principal)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mark otp used: %w", err)
	}

	return true, nil
}
