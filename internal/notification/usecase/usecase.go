package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/riskguard/internal/notification/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
)

const defaultSubject = "Your MFA Login Code"

type sender interface {
	SendCode(ctx context.Context, d entity.CodeDelivery) error
}

// RetryPolicy bounds provider retries. MaxAttempts counts the first try.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second}
}

type Usecase struct {
	email   sender
	sms     sender
	console sender
	ins     instrument.Instrumentation
	retry   RetryPolicy
	subject string
}

type Dependency struct {
	// Email and SMS are optional; a nil channel falls back to Console.
	Email      sender
	SMS        sender
	Console    sender
	Instrument instrument.Instrumentation
	Retry      RetryPolicy
	Subject    string
}

func New(dep Dependency) *Usecase {
	retry := dep.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = DefaultRetryPolicy().BaseDelay
	}

	subject := dep.Subject
	if subject == "" {
		subject = defaultSubject
	}

	return &Usecase{
		email:   dep.Email,
		sms:     dep.SMS,
		console: dep.Console,
		ins:     dep.Instrument,
		retry:   retry,
		subject: subject,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
