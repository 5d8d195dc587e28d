package notification

import (
	"io"

	"github.com/shandysiswandi/riskguard/internal/notification/outbound/console"
	"github.com/shandysiswandi/riskguard/internal/notification/outbound/email"
	outsms "github.com/shandysiswandi/riskguard/internal/notification/outbound/sms"
	"github.com/shandysiswandi/riskguard/internal/notification/usecase"
	"github.com/shandysiswandi/riskguard/internal/pkg/config"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"github.com/shandysiswandi/riskguard/internal/pkg/mail"
	"github.com/shandysiswandi/riskguard/internal/pkg/sms"
)

type Dependency struct {
	// Mail and SMS are nil when their driver is not configured.
	Mail       mail.Mail
	SMS        sms.SMS
	Console    io.Writer
	Config     config.Config
	Instrument instrument.Instrumentation
}

// New builds the code notifier consumed by the identity module.
func New(dep Dependency) *usecase.Usecase {
	ucDep := usecase.Dependency{
		Console:    console.New(dep.Console),
		Instrument: dep.Instrument,
		Retry: usecase.RetryPolicy{
			MaxAttempts: dep.Config.GetInt("modules.notification.retry.max_attempts"),
			BaseDelay:   dep.Config.GetMillisecond("modules.notification.retry.base_delay_ms"),
			MaxDelay:    dep.Config.GetMillisecond("modules.notification.retry.max_delay_ms"),
		},
		Subject: dep.Config.GetString("modules.notification.subject"),
	}

	if dep.Mail != nil {
		ucDep.Email = email.New(dep.Mail, dep.Instrument)
	}
	if dep.SMS != nil {
		ucDep.SMS = outsms.New(dep.SMS, dep.Instrument)
	}

	return usecase.New(ucDep)
}
