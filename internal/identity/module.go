package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/identity/inbound"
	"github.com/shandysiswandi/riskguard/internal/identity/outbound/audit"
	"github.com/shandysiswandi/riskguard/internal/identity/outbound/cache"
	"github.com/shandysiswandi/riskguard/internal/identity/outbound/db"
	"github.com/shandysiswandi/riskguard/internal/identity/outbound/memory"
	"github.com/shandysiswandi/riskguard/internal/identity/outbound/mq"
	"github.com/shandysiswandi/riskguard/internal/identity/usecase"
	"github.com/shandysiswandi/riskguard/internal/pkg/clock"
	"github.com/shandysiswandi/riskguard/internal/pkg/config"
	"github.com/shandysiswandi/riskguard/internal/pkg/goroutine"
	"github.com/shandysiswandi/riskguard/internal/pkg/hash"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"github.com/shandysiswandi/riskguard/internal/pkg/jwt"
	"github.com/shandysiswandi/riskguard/internal/pkg/messaging"
	"github.com/shandysiswandi/riskguard/internal/pkg/otp"
	"github.com/shandysiswandi/riskguard/internal/pkg/ratelimit"
	"github.com/shandysiswandi/riskguard/internal/pkg/router"
	"github.com/shandysiswandi/riskguard/internal/pkg/uid"
	"github.com/shandysiswandi/riskguard/internal/pkg/validator"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"

	SinkLog      = "log"
	SinkFile     = "file"
	SinkPostgres = "postgres"
	SinkMQ       = "mq"

	defaultDemoAddress = "demo-user@example.com"
	defaultAuditFile   = "./logs/audit_logs.jsonl"
)

var (
	ErrUnknownStore = errors.New("identity: unknown otp store")
	ErrUnknownSink  = errors.New("identity: unknown audit sink")
	ErrMissingConn  = errors.New("identity: required connection is not configured")
	ErrOTPLength    = errors.New("identity: otp length is out of range")
)

type notifier interface {
	ChannelFor(address string) string
	Send(ctx context.Context, address, code string, expiresIn time.Duration) error
}

type Dependency struct {
	// DBConn, CacheConn and Messaging are only required by the store and
	// sinks that use them.
	DBConn     *pgxpool.Pool
	CacheConn  *redis.Client
	Messaging  messaging.Publisher
	Notifier   notifier                   `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

// Module holds what the app must release on shutdown.
type Module struct {
	closers []io.Closer
}

func (m *Module) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func New(ctx context.Context, dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	cfg := dep.Config
	mod := &Module{}

	otpPolicy, err := otpPolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	codes, err := otp.NewNumeric(otpPolicy.Length)
	if err != nil {
		return nil, err
	}

	var dbIdentity *db.DB
	if dep.DBConn != nil {
		dbIdentity = db.NewDB(dep.DBConn, dep.Instrument)
		if err := dbIdentity.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	store, err := newStore(cfg.GetString("modules.identity.otp.store"), dbIdentity, dep)
	if err != nil {
		return nil, err
	}

	sink, err := newAuditSink(cfg, dbIdentity, dep, mod)
	if err != nil {
		_ = mod.Close()
		return nil, err
	}

	ucDep := usecase.Dependency{
		RepoOTP:     store,
		Audit:       sink,
		Notifier:    dep.Notifier,
		Codes:       codes,
		Validator:   dep.Validator,
		HMAC:        dep.HMAC,
		UID:         dep.UID,
		UUID:        dep.UUID,
		Clock:       dep.Clock,
		JWT:         dep.JWT,
		Instrument:  dep.Instrument,
		Goroutine:   dep.Goroutine,
		RiskPolicy:  riskPolicyFromConfig(cfg),
		OTPPolicy:   otpPolicy,
		DemoAddress: lo.CoalesceOrEmpty(cfg.GetString("modules.identity.demo_address"), defaultDemoAddress),
	}
	if cfg.GetBool("modules.identity.verify_limit.enabled") && dep.CacheConn != nil {
		ucDep.Limiter = ratelimit.NewFixedWindow(dep.CacheConn,
			cfg.GetInt("modules.identity.verify_limit.max_attempts"),
			cfg.GetSecond("modules.identity.verify_limit.window_seconds"),
			ratelimit.WithPrefix("identity:verify:"),
		)
	}

	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return mod, nil
}

func riskPolicyFromConfig(cfg config.Config) entity.RiskPolicy {
	p := entity.DefaultRiskPolicy()

	intOr := func(key string, def int) int {
		if cfg.IsSet(key) {
			return cfg.GetInt(key)
		}
		return def
	}

	p.Weights.UnknownDevice = intOr("modules.identity.risk.weights.unknown_device", p.Weights.UnknownDevice)
	p.Weights.UnknownLocation = intOr("modules.identity.risk.weights.unknown_location", p.Weights.UnknownLocation)
	p.Weights.AbnormalTime = intOr("modules.identity.risk.weights.abnormal_time", p.Weights.AbnormalTime)
	p.Weights.FailedAttempts1 = intOr("modules.identity.risk.weights.failed_attempts_1", p.Weights.FailedAttempts1)
	p.Weights.FailedAttempts2 = intOr("modules.identity.risk.weights.failed_attempts_2", p.Weights.FailedAttempts2)
	p.Weights.FailedAttempts3Plus = intOr("modules.identity.risk.weights.failed_attempts_3_plus", p.Weights.FailedAttempts3Plus)
	p.Thresholds.Medium = intOr("modules.identity.risk.thresholds.medium", p.Thresholds.Medium)
	p.Thresholds.High = intOr("modules.identity.risk.thresholds.high", p.Thresholds.High)

	return p
}

func otpPolicyFromConfig(cfg config.Config) (entity.OTPPolicy, error) {
	p := entity.DefaultOTPPolicy()
	if cfg.IsSet("modules.identity.otp.length") {
		p.Length = cfg.GetInt("modules.identity.otp.length")
	}
	if p.Length < entity.OTPMinLength || p.Length > entity.OTPMaxLength {
		return p, fmt.Errorf("%w: %d, want %d-%d", ErrOTPLength, p.Length, entity.OTPMinLength, entity.OTPMaxLength)
	}
	if d := cfg.GetSecond("modules.identity.otp.expiry_seconds"); d > 0 {
		p.Expiry = d
	}
	return p, nil
}

type otpStore interface {
	SupersedeAndInsert(ctx context.Context, rec entity.OTPRecord) error
	GetActive(ctx context.Context, principal string) (*entity.OTPRecord, error)
	MarkUsed(ctx context.Context, rec entity.OTPRecord) error
}

func newStore(driver string, dbIdentity *db.DB, dep Dependency) (otpStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", StorePostgres:
		if dbIdentity == nil {
			return nil, fmt.Errorf("%w: postgres otp store needs a database", ErrMissingConn)
		}
		return dbIdentity, nil
	case StoreRedis:
		if dep.CacheConn == nil {
			return nil, fmt.Errorf("%w: redis otp store needs a redis client", ErrMissingConn)
		}
		return cache.NewCache(dep.CacheConn, dep.Instrument), nil
	case StoreMemory:
		slog.Warn("otp store is in memory, codes are lost on restart")
		return memory.NewOTPStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, driver)
	}
}

func newAuditSink(cfg config.Config, dbIdentity *db.DB, dep Dependency, mod *Module) (audit.Sink, error) {
	names := lo.Uniq(lo.FilterMap(cfg.GetArray("modules.identity.audit.sinks"), func(s string, _ int) (string, bool) {
		s = strings.ToLower(strings.TrimSpace(s))
		return s, s != ""
	}))
	if len(names) == 0 {
		names = []string{SinkLog}
	}

	sinks := make(audit.Fanout, 0, len(names))
	for _, name := range names {
		switch name {
		case SinkLog:
			sinks = append(sinks, audit.NewLog(slog.Default()))
		case SinkFile:
			f, err := audit.NewFile(lo.CoalesceOrEmpty(cfg.GetString("modules.identity.audit.file_path"), defaultAuditFile))
			if err != nil {
				return nil, err
			}
			mod.closers = append(mod.closers, f)
			sinks = append(sinks, f)
		case SinkPostgres:
			if dbIdentity == nil {
				return nil, fmt.Errorf("%w: postgres audit sink needs a database", ErrMissingConn)
			}
			sinks = append(sinks, dbIdentity)
		case SinkMQ:
			if dep.Messaging == nil {
				return nil, fmt.Errorf("%w: mq audit sink needs a messaging driver", ErrMissingConn)
			}
			sinks = append(sinks, mq.NewMessaging(dep.Messaging, dep.Instrument, cfg.GetString("modules.identity.audit.topic")))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownSink, name)
		}
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}
