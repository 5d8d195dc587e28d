package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/riskguard/internal/identity"
	"github.com/shandysiswandi/riskguard/internal/notification"
)

func (a *App) initModules() {
	notifier := notification.New(notification.Dependency{
		Mail:       a.mail,
		SMS:        a.sms,
		Console:    os.Stdout,
		Config:     a.config,
		Instrument: a.ins,
	})

	mod, err := identity.New(a.ctx, identity.Dependency{
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
		Messaging:  a.messaging,
		Notifier:   notifier,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		UUID:       a.uuid,
		HMAC:       a.hmac,
		Clock:      a.clock,
		Validator:  a.validator,
		JWT:        a.jwt,
	})
	if err != nil {
		slog.Error("failed to init module identity", "error", err)
		os.Exit(1)
	}
	a.identity = mod
}
