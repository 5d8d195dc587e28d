package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/riskguard/internal/notification/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
)

// route picks the channel for address, falling back to console when the
// natural channel has no provider.
func (s *Usecase) route(address string) (entity.Channel, sender) {
	switch {
	case sms.IsE164(address) && s.sms != nil:
		return entity.ChannelSMS, s.sms
	case strings.Contains(address, "@") && s.email != nil:
		return entity.ChannelEmail, s.email
	default:
		return entity.ChannelConsole, s.console
	}
}

// ChannelFor names the channel Send would use for address.
func (s *Usecase) ChannelFor(address string) string {
	ch, _ := s.route(address)
	return ch.String()
}

func expiryText(d time.Duration) string {
	minutes := int(math.Ceil(d.Minutes()))
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func (s *Usecase) render(address, code string, expiresIn time.Duration) entity.CodeDelivery {
	return entity.CodeDelivery{
		Address:   address,
		Code:      code,
		ExpiresIn: expiresIn,
		Subject:   s.subject,
		Body:      fmt.Sprintf("Your Security Code is: %s. It expires in %s.", code, expiryText(expiresIn)),
	}
}

func (s *Usecase) backoff() retry.Backoff {
	b := retry.NewExponential(s.retry.BaseDelay)
	if s.retry.MaxDelay > 0 {
		b = retry.WithCappedDuration(s.retry.MaxDelay, b)
	}
	return retry.WithMaxRetries(uint64(s.retry.MaxAttempts-1), b)
}

// Send delivers code to address. Provider failures are retried with
// exponential backoff; the last error is logged and returned.
func (s *Usecase) Send(ctx context.Context, address, code string, expiresIn time.Duration) error {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	ch, out := s.route(address)
	span.SetAttributes(attribute.String("notification.channel", ch.String()))

	d := s.render(address, code, expiresIn)

	attempt := 0
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempt++
		if err := out.SendCode(ctx, d); err != nil {
			slog.WarnContext(ctx, "code delivery attempt failed", "channel", ch.String(), "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver code", "channel", ch.String(), "attempts", attempt, "error", err)
		return fmt.Errorf("deliver code via %s: %w", ch.String(), err)
	}

	return nil
}
