package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/riskguard/internal/identity"
	"github.com/shandysiswandi/riskguard/internal/pkg/clock"
	"github.com/shandysiswandi/riskguard/internal/pkg/config"
	"github.com/shandysiswandi/riskguard/internal/pkg/goroutine"
	"github.com/shandysiswandi/riskguard/internal/pkg/hash"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"github.com/shandysiswandi/riskguard/internal/pkg/jwt"
	"github.com/shandysiswandi/riskguard/internal/pkg/mail"
	"github.com/shandysiswandi/riskguard/internal/pkg/messaging"
	"github.com/shandysiswandi/riskguard/internal/pkg/router"
	"github.com/shandysiswandi/riskguard/internal/pkg/sms"
	"github.com/shandysiswandi/riskguard/internal/pkg/uid"
	"github.com/shandysiswandi/riskguard/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources, nil when the configuration does not need them
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	sms       sms.SMS
	messaging messaging.Publisher

	// server
	router     *router.Router
	httpServer *http.Server

	identity *identity.Module

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initSMS()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
