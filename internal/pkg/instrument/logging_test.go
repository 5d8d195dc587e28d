package instrument

import (
	"log/slog"
	"strings"
	"testing"
)

func TestMaskAttr(t *testing.T) {
	maskKeys := buildMaskKeys([]string{" OTP_Code ", "password", ""})

	t.Run("TopLevelKey", func(t *testing.T) {
		// Act
		got := maskAttr(slog.String("otp_code", "123456"), maskKeys)

		// Assert
		if got.Value.String() != "***" {
			t.Fatalf("expected masked value, got %q", got.Value.String())
		}
	})

	t.Run("JSONString", func(t *testing.T) {
		// Act
		got := maskAttr(slog.String("body", `{"username":"alice","password":"hunter2"}`), maskKeys)

		// Assert
		if strings.Contains(got.Value.String(), "hunter2") {
			t.Fatalf("expected password masked, got %s", got.Value.String())
		}
		if !strings.Contains(got.Value.String(), "alice") {
			t.Fatalf("expected username kept, got %s", got.Value.String())
		}
	})

	t.Run("Group", func(t *testing.T) {
		// Act
		got := maskAttr(slog.Group("req", slog.String("password", "x"), slog.Int("n", 1)), maskKeys)

		// Assert
		for _, a := range got.Value.Group() {
			if a.Key == "password" && a.Value.String() != "***" {
				t.Fatalf("expected nested password masked, got %q", a.Value.String())
			}
		}
	})
}

func TestMaskAttr_Defaults(t *testing.T) {
	maskKeys := buildMaskKeys(nil)

	t.Run("OTPCodeWithoutConfig", func(t *testing.T) {
		got := maskAttr(slog.String("OTP_CODE", "482913"), maskKeys)

		if got.Value.String() != "***" {
			t.Fatalf("expected masked value, got %q", got.Value.String())
		}
	})

	t.Run("MapValue", func(t *testing.T) {
		got := maskAttr(slog.Any("payload", map[string]string{"username": "alice", "otp_code": "482913"}), maskKeys)

		m, ok := got.Value.Any().(map[string]any)
		if !ok || m["otp_code"] != "***" || m["username"] != "alice" {
			t.Fatalf("unexpected masked payload %v", got.Value.Any())
		}
	})

	t.Run("BytesNotJSON", func(t *testing.T) {
		got := maskAttr(slog.Any("raw", []byte("plain")), maskKeys)

		if b, ok := got.Value.Any().([]byte); !ok || string(b) != "plain" {
			t.Fatalf("expected untouched bytes, got %v", got.Value.Any())
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
