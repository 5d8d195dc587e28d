package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/goerror"
	"github.com/shandysiswandi/riskguard/internal/pkg/jwt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type VerifyOTPInput struct {
	Username string `validate:"required,max=128,principal"`
	Code     string `validate:"required,otpcode"`
}

type VerifyOTPOutput struct {
	Status entity.LoginStatus
	Token  string
}

var errInvalidCode = goerror.NewBusiness("invalid or expired code", goerror.CodeUnauthorized)

func (s *Usecase) countVerification(ctx context.Context, result string) {
	if s.otpVerifications != nil {
		s.otpVerifications.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}

func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	principal := strings.TrimSpace(in.Username)

	if s.limiter != nil {
		decision, err := s.limiter.Allow(ctx, principal)
		if err != nil {
			slog.WarnContext(ctx, "verify attempt limiter unavailable", "principal", principal, "error", err)
		} else if !decision.Allowed {
			slog.WarnContext(ctx, "too many otp verification attempts", "principal", principal, "retry_after", decision.RetryAfter.String())
			s.countVerification(ctx, "throttled")
			s.recordAudit(ctx, s.newAuditEvent(ctx, principal, entity.AuditActionMFAFailed, nil))
			return nil, goerror.NewBusiness("too many verification attempts, try again later", goerror.CodeTooManyRequest)
		}
	}

	ok, err := s.verifyOTP(ctx, principal, in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify otp", "principal", principal, "error", err)
		s.countVerification(ctx, "error")
		s.recordAudit(ctx, s.newAuditEvent(ctx, principal, entity.AuditActionMFAFailed, nil))
		return nil, goerror.NewServer(err)
	}
	if !ok {
		s.countVerification(ctx, "rejected")
		s.recordAudit(ctx, s.newAuditEvent(ctx, principal, entity.AuditActionMFAFailed, nil))
		return nil, errInvalidCode
	}

	s.countVerification(ctx, "accepted")
	s.recordAudit(ctx, s.newAuditEvent(ctx, principal, entity.AuditActionMFASuccess, nil))

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, principal); err != nil {
			slog.WarnContext(ctx, "failed to reset verify attempt limiter", "principal", principal, "error", err)
		}
	}

	token, err := s.jwt.Generate(jwt.Grant{
		Subject: principal,
		AMR:     []string{jwt.AMRPassword, jwt.AMROTP},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "principal", principal, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyOTPOutput{Status: entity.LoginStatusSuccess, Token: token}, nil
}
