package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/identity/outbound/memory"
	"github.com/shandysiswandi/riskguard/internal/pkg/clock"
	"github.com/shandysiswandi/riskguard/internal/pkg/goroutine"
	"github.com/shandysiswandi/riskguard/internal/pkg/hash"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"github.com/shandysiswandi/riskguard/internal/pkg/jwt"
	"github.com/shandysiswandi/riskguard/internal/pkg/ratelimit"
	"github.com/shandysiswandi/riskguard/internal/pkg/uid"
	"github.com/shandysiswandi/riskguard/internal/pkg/validator"
)

const testSigningKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type codeSequence struct {
	mu    sync.Mutex
	codes []string
	next  int
	err   error
}

func (c *codeSequence) Generate() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return "", c.err
	}
	code := c.codes[c.next%len(c.codes)]
	c.next++
	return code, nil
}

type delivery struct {
	Address string
	Code    string
	Expiry  time.Duration
}

type notifierStub struct {
	mu   sync.Mutex
	sent []delivery
	err  error
}

func (n *notifierStub) ChannelFor(address string) string {
	if strings.Contains(address, "@") {
		return "email"
	}
	return "sms"
}

func (n *notifierStub) Send(_ context.Context, address, code string, expiresIn time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, delivery{Address: address, Code: code, Expiry: expiresIn})
	return n.err
}

func (n *notifierStub) deliveries() []delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]delivery(nil), n.sent...)
}

type auditRecorder struct {
	mu     sync.Mutex
	events []entity.AuditEvent
	err    error
}

func (a *auditRecorder) Record(_ context.Context, ev entity.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, ev)
	return nil
}

func (a *auditRecorder) actions() []entity.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]entity.AuditAction, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

func (a *auditRecorder) last() entity.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1]
}

// brokenStore fails every call with err.
type brokenStore struct{ err error }

func (b brokenStore) SupersedeAndInsert(context.Context, entity.OTPRecord) error { return b.err }

func (b brokenStore) GetActive(context.Context, string) (*entity.OTPRecord, error) {
	return nil, b.err
}

func (b brokenStore) MarkUsed(context.Context, entity.OTPRecord) error { return b.err }

type limiterStub struct {
	mu       sync.Mutex
	decision ratelimit.Decision
	err      error
	resets   int
}

func (l *limiterStub) Allow(context.Context, string) (ratelimit.Decision, error) {
	return l.decision, l.err
}

func (l *limiterStub) Reset(context.Context, string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resets++
	return nil
}

type fixture struct {
	uc       *Usecase
	store    *memory.OTPStore
	audit    *auditRecorder
	notifier *notifierStub
	codes    *codeSequence
	jwt      *jwt.Symmetric
	gm       *goroutine.Manager

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T, mutate ...func(*Dependency)) *fixture {
	t.Helper()

	f := &fixture{
		store:    memory.NewOTPStore(),
		audit:    &auditRecorder{},
		notifier: &notifierStub{},
		codes:    &codeSequence{codes: []string{"482913", "105377", "660021"}},
		gm:       goroutine.NewManager(64),
		now:      time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}
	clk := clock.Func(f.clockNow)

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	hmac, err := hash.NewHMACSHA256("otp-test-secret")
	if err != nil {
		t.Fatalf("hmac: %v", err)
	}
	sf, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	f.jwt, err = jwt.NewHS512(jwt.Config{
		Secret:    []byte(testSigningKey),
		Issuer:    "riskguard-test",
		Audiences: []string{"riskguard"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	dep := Dependency{
		RepoOTP:     f.store,
		Audit:       f.audit,
		Notifier:    f.notifier,
		Codes:       f.codes,
		Validator:   v,
		HMAC:        hmac,
		UID:         sf,
		UUID:        uid.NewUUID(),
		Clock:       clk,
		JWT:         f.jwt,
		Instrument:  instrument.NewNoop(),
		Goroutine:   f.gm,
		RiskPolicy:  entity.DefaultRiskPolicy(),
		OTPPolicy:   entity.DefaultOTPPolicy(),
		DemoAddress: "demo@riskguard.local",
	}
	for _, m := range mutate {
		m(&dep)
	}

	f.uc = New(dep)
	return f
}

func (f *fixture) clockNow() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// flush waits for background delivery and audit tasks, then gives the usecase
// a fresh manager so the next flow can schedule again.
func (f *fixture) flush(t *testing.T) {
	t.Helper()

	if err := f.gm.Wait(); err != nil {
		t.Fatalf("background tasks: %v", err)
	}
	f.gm = goroutine.NewManager(64)
	f.uc.goroutine = f.gm
}

func (f *fixture) hasActive(principal string) bool {
	_, err := f.store.GetActive(context.Background(), principal)
	return err == nil
}

func (f *fixture) lastCode(t *testing.T) string {
	t.Helper()

	sent := f.notifier.deliveries()
	if len(sent) == 0 {
		t.Fatalf("no code was delivered")
	}
	return sent[len(sent)-1].Code
}

var errStorageDown = errors.New("storage down")
