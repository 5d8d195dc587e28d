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

type LoginInput struct {
	Username string `validate:"required,max=128,principal"`
	// Password is required but not checked; credential verification happens upstream.
	Password        string `validate:"required"`
	Email           string `validate:"omitempty,max=254,email|e164"`
	KnownDevice     bool
	KnownLocation   bool
	LoginTimeNormal bool
	FailedAttempts  int `validate:"gte=0"`
	// ClientIP is recorded on the LOGIN_ATTEMPT event only.
	ClientIP string
}

type LoginOutput struct {
	Status      entity.LoginStatus
	Assessment  entity.RiskAssessment
	MfaRequired bool
	Token       string
}

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	principal := strings.TrimSpace(in.Username)
	assessment := EvaluateRisk(entity.SignalSet{
		KnownDevice:    in.KnownDevice,
		KnownLocation:  in.KnownLocation,
		NormalTime:     in.LoginTimeNormal,
		FailedAttempts: in.FailedAttempts,
	}, s.risk.Weights, s.risk.Thresholds)

	span.SetAttributes(
		attribute.Int("risk.score", assessment.Score),
		attribute.String("risk.level", assessment.Level.String()),
	)
	if s.loginDecisions != nil {
		s.loginDecisions.Add(ctx, 1, metric.WithAttributes(attribute.String("level", assessment.Level.String())))
	}

	details := map[string]any{
		"risk_score": assessment.Score,
		"risk_level": assessment.Level.String(),
		"reasons":    assessment.Reasons,
	}
	if in.ClientIP != "" {
		details["client_ip"] = in.ClientIP
	}
	events := []entity.AuditEvent{s.newAuditEvent(ctx, principal, entity.AuditActionLoginAttempt, details)}
	defer func() { s.recordAudit(ctx, events...) }()

	if !assessment.Level.RequiresMFA() {
		token, err := s.jwt.Generate(jwt.Grant{
			Subject:   principal,
			RiskLevel: assessment.Level.String(),
			AMR:       []string{jwt.AMRPassword},
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate access token", "principal", principal, "error", err)
			return nil, goerror.NewServer(err)
		}

		return &LoginOutput{
			Status:     entity.LoginStatusSuccess,
			Assessment: assessment,
			Token:      token,
		}, nil
	}

	address := strings.TrimSpace(in.Email)
	if address == "" {
		address = s.demoAddress
	}

	_, channel, err := s.issueOTP(ctx, principal, address)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue otp challenge", "principal", principal, "error", err)
		return nil, goerror.NewServer(err)
	}

	events = append(events, s.newAuditEvent(ctx, principal, entity.AuditActionMFAChallenge, map[string]any{
		"trigger": entity.AuditTriggerRiskThreshold,
		"channel": channel,
	}))

	return &LoginOutput{
		Status:      entity.LoginStatusMFAPending,
		Assessment:  assessment,
		MfaRequired: true,
	}, nil
}
