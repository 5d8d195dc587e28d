package usecase

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/goerror"
	"github.com/shandysiswandi/riskguard/internal/pkg/jwt"
	"github.com/shandysiswandi/riskguard/internal/pkg/ratelimit"
)

// challenge runs a risky login for principal and returns the delivered code.
func challenge(t *testing.T, f *fixture, principal string) string {
	t.Helper()

	out, err := f.uc.Login(context.Background(), LoginInput{Username: principal, Password: "pw", Email: principal + "@example.com"})
	f.flush(t)
	if err != nil || !out.MfaRequired {
		t.Fatalf("expected challenge, got %+v err=%v", out, err)
	}
	return f.lastCode(t)
}

func TestUsecase_VerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		code := challenge(t, f, "alice")

		// Act
		out, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Status != entity.LoginStatusSuccess || out.Token == "" {
			t.Fatalf("unexpected output %+v", out)
		}
		clm, err := f.jwt.Verify(out.Token)
		if err != nil {
			t.Fatalf("token does not verify: %v", err)
		}
		if !reflect.DeepEqual(clm.AMR, []string{jwt.AMRPassword, jwt.AMROTP}) || clm.RiskLevel != "" {
			t.Fatalf("unexpected claims %+v", clm)
		}
		if f.audit.last().Action != entity.AuditActionMFASuccess {
			t.Fatalf("expected MFA_SUCCESS, got %v", f.audit.actions())
		}
	})

	t.Run("SecondUseRejected", func(t *testing.T) {
		f := newFixture(t)
		code := challenge(t, f, "alice")

		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)
		if err != nil {
			t.Fatalf("first verify: %v", err)
		}

		out, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)
		if out != nil || !errors.Is(err, errInvalidCode) {
			t.Fatalf("expected invalid code, got %+v err=%v", out, err)
		}
		if f.audit.last().Action != entity.AuditActionMFAFailed {
			t.Fatalf("expected MFA_FAILED, got %v", f.audit.actions())
		}
	})

	t.Run("SupersededCodeRejected", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		first := challenge(t, f, "alice")
		second := challenge(t, f, "alice")

		// Act
		_, errOld := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: first})
		f.flush(t)
		out, errNew := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: second})
		f.flush(t)

		// Assert
		if first == second {
			t.Fatalf("fixture should hand out distinct codes")
		}
		if !errors.Is(errOld, errInvalidCode) {
			t.Fatalf("old code must be rejected, got %v", errOld)
		}
		if errNew != nil || out.Token == "" {
			t.Fatalf("new code must verify, got %+v err=%v", out, errNew)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		f := newFixture(t)
		code := challenge(t, f, "alice")
		f.advance(entity.DefaultOTPPolicy().Expiry + time.Second)

		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)

		if !errors.Is(err, errInvalidCode) {
			t.Fatalf("expected invalid code, got %v", err)
		}
	})

	t.Run("ValidAtExactExpiry", func(t *testing.T) {
		f := newFixture(t)
		code := challenge(t, f, "alice")
		f.advance(entity.DefaultOTPPolicy().Expiry)

		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)

		if err != nil {
			t.Fatalf("expected success at expiry instant, got %v", err)
		}
	})

	t.Run("WrongCodeThenRightCode", func(t *testing.T) {
		f := newFixture(t)
		code := challenge(t, f, "alice")

		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: "000000"})
		f.flush(t)
		if !errors.Is(err, errInvalidCode) {
			t.Fatalf("expected invalid code, got %v", err)
		}

		_, err = f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)
		if err != nil {
			t.Fatalf("a mismatch must not burn the code, got %v", err)
		}
	})

	t.Run("CodeBoundToPrincipal", func(t *testing.T) {
		f := newFixture(t)
		code := challenge(t, f, "alice")

		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "mallory", Code: code})
		f.flush(t)

		if !errors.Is(err, errInvalidCode) {
			t.Fatalf("expected invalid code, got %v", err)
		}
	})

	t.Run("SameRejectionForEveryCause", func(t *testing.T) {
		f := newFixture(t)
		_ = challenge(t, f, "alice")

		_, noRecord := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "nobody", Code: "123456"})
		_, mismatch := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: "999999"})
		f.flush(t)

		if noRecord.Error() != mismatch.Error() {
			t.Fatalf("rejections differ: %q vs %q", noRecord, mismatch)
		}
		gerr, ok := goerror.As(mismatch)
		if !ok || gerr.StatusCode() != 401 || gerr.Msg() != "invalid or expired code" {
			t.Fatalf("unexpected rejection %v", mismatch)
		}
	})

	t.Run("NonNumericCodeInvalidInput", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: "12ab56"})
		f.flush(t)

		if !goerror.HasCode(err, goerror.CodeInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("StorageFaultFailsClosed", func(t *testing.T) {
		f := newFixture(t, func(d *Dependency) { d.RepoOTP = brokenStore{err: errStorageDown} })

		out, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: "123456"})
		f.flush(t)

		if out != nil || !goerror.HasCode(err, goerror.CodeInternal) {
			t.Fatalf("expected server error, got %+v err=%v", out, err)
		}
		if f.audit.last().Action != entity.AuditActionMFAFailed {
			t.Fatalf("expected MFA_FAILED, got %v", f.audit.actions())
		}
	})

	t.Run("Throttled", func(t *testing.T) {
		// Arrange
		lim := &limiterStub{decision: ratelimit.Decision{Allowed: false, RetryAfter: time.Minute}}
		f := newFixture(t, func(d *Dependency) { d.Limiter = lim })
		code := challenge(t, f, "alice")

		// Act
		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)

		// Assert
		if !goerror.HasCode(err, goerror.CodeTooManyRequest) {
			t.Fatalf("expected too many requests, got %v", err)
		}
		if rec, err := f.store.GetActive(ctx, "alice"); err != nil || rec.Used {
			t.Fatalf("throttled attempt must not consume the code, got %+v err=%v", rec, err)
		}
	})

	t.Run("LimiterOutageFailsOpen", func(t *testing.T) {
		lim := &limiterStub{err: errors.New("redis down")}
		f := newFixture(t, func(d *Dependency) { d.Limiter = lim })
		code := challenge(t, f, "alice")

		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)

		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})

	t.Run("SuccessResetsLimiter", func(t *testing.T) {
		lim := &limiterStub{decision: ratelimit.Decision{Allowed: true, Remaining: 3}}
		f := newFixture(t, func(d *Dependency) { d.Limiter = lim })
		code := challenge(t, f, "alice")

		_, err := f.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", Code: code})
		f.flush(t)

		if err != nil || lim.resets != 1 {
			t.Fatalf("expected one reset, got %d err=%v", lim.resets, err)
		}
	})
}

func TestUsecase_VerifyOTP_ConcurrentSingleUse(t *testing.T) {
	// Arrange
	f := newFixture(t)
	code := challenge(t, f, "alice")

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		denied  int
	)

	// Act
	for range workers {
		wg.Go(func() {
			_, err := f.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "alice", Code: code})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				granted++
			} else if errors.Is(err, errInvalidCode) {
				denied++
			}
		})
	}
	wg.Wait()
	f.flush(t)

	// Assert
	if granted != 1 || denied != workers-1 {
		t.Fatalf("expected 1 grant and %d denials, got %d and %d", workers-1, granted, denied)
	}
}
