package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/clock"
	"github.com/shandysiswandi/riskguard/internal/pkg/goroutine"
	"github.com/shandysiswandi/riskguard/internal/pkg/hash"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"github.com/shandysiswandi/riskguard/internal/pkg/jwt"
	"github.com/shandysiswandi/riskguard/internal/pkg/otp"
	"github.com/shandysiswandi/riskguard/internal/pkg/ratelimit"
	"github.com/shandysiswandi/riskguard/internal/pkg/uid"
	"github.com/shandysiswandi/riskguard/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// repoOTP owns OTP persistence. SupersedeAndInsert and MarkUsed must be
// atomic per principal.
type repoOTP interface {
	SupersedeAndInsert(ctx context.Context, rec entity.OTPRecord) error
	GetActive(ctx context.Context, principal string) (*entity.OTPRecord, error)
	MarkUsed(ctx context.Context, rec entity.OTPRecord) error
}

type auditSink interface {
	Record(ctx context.Context, ev entity.AuditEvent) error
}

type notifier interface {
	// ChannelFor names the channel a code for address would be sent on.
	ChannelFor(address string) string
	Send(ctx context.Context, address, code string, expiresIn time.Duration) error
}

type attemptLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
	Reset(ctx context.Context, key string) error
}

type Usecase struct {
	repoOTP     repoOTP
	audit       auditSink
	notifier    notifier
	limiter     attemptLimiter
	codes       otp.Generator
	validator   validator.Validator
	hmac        hash.Hash
	uid         uid.NumberID
	uuid        uid.StringID
	clock       clock.Clocker
	jwt         jwt.JWT
	ins         instrument.Instrumentation
	goroutine   *goroutine.Manager
	risk        entity.RiskPolicy
	otpPolicy   entity.OTPPolicy
	demoAddress string

	loginDecisions   metric.Int64Counter
	otpVerifications metric.Int64Counter
}

type Dependency struct {
	RepoOTP  repoOTP
	Audit    auditSink
	Notifier notifier
	// Limiter is optional; nil disables verify throttling.
	Limiter     attemptLimiter
	Codes       otp.Generator
	Validator   validator.Validator
	HMAC        hash.Hash
	UID         uid.NumberID
	UUID        uid.StringID
	Clock       clock.Clocker
	JWT         jwt.JWT
	Instrument  instrument.Instrumentation
	Goroutine   *goroutine.Manager
	RiskPolicy  entity.RiskPolicy
	OTPPolicy   entity.OTPPolicy
	DemoAddress string
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoOTP:     dep.RepoOTP,
		audit:       dep.Audit,
		notifier:    dep.Notifier,
		limiter:     dep.Limiter,
		codes:       dep.Codes,
		validator:   dep.Validator,
		hmac:        dep.HMAC,
		uid:         dep.UID,
		uuid:        dep.UUID,
		clock:       dep.Clock,
		jwt:         dep.JWT,
		ins:         dep.Instrument,
		goroutine:   dep.Goroutine,
		risk:        dep.RiskPolicy,
		otpPolicy:   dep.OTPPolicy,
		demoAddress: dep.DemoAddress,
	}

	meter := uc.ins.Meter("identity.usecase")

	var err error
	uc.loginDecisions, err = meter.Int64Counter("identity.login.decisions",
		metric.WithDescription("Login attempts by assessed risk level"))
	if err != nil {
		slog.Error("failed to create login decision counter", "error", err)
	}
	uc.otpVerifications, err = meter.Int64Counter("identity.otp.verifications",
		metric.WithDescription("OTP verification outcomes"))
	if err != nil {
		slog.Error("failed to create otp verification counter", "error", err)
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}
