package entity

import (
	"testing"
	"time"
)

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		level RiskLevel
		str   string
		mfa   bool
	}{
		{RiskLevelLow, "LOW", false},
		{RiskLevelMedium, "MEDIUM", true},
		{RiskLevelHigh, "HIGH", true},
		{RiskLevel(0), "UNKNOWN", false},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if tt.level.String() != tt.str {
				t.Fatalf("String() = %q", tt.level.String())
			}
			if tt.level.RequiresMFA() != tt.mfa {
				t.Fatalf("RequiresMFA() = %v", tt.level.RequiresMFA())
			}
			if got := RiskLevelFromString(" " + tt.str + " "); tt.level != 0 && got != tt.level {
				t.Fatalf("RiskLevelFromString(%q) = %v", tt.str, got)
			}
		})
	}
}

func TestReasonFailedAttemptsMany(t *testing.T) {
	if got := ReasonFailedAttemptsMany(4); got != "High volume of failed attempts (4)" {
		t.Fatalf("unexpected reason %q", got)
	}
}

func TestOTPRecord_Status(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record *OTPRecord
		want   OTPStatus
	}{
		{name: "nil", record: nil, want: OTPStatusNone},
		{name: "active", record: &OTPRecord{ExpiresAt: now.Add(time.Second)}, want: OTPStatusActive},
		{name: "at expiry", record: &OTPRecord{ExpiresAt: now}, want: OTPStatusActive},
		{name: "expired", record: &OTPRecord{ExpiresAt: now.Add(-time.Nanosecond)}, want: OTPStatusExpired},
		{name: "used wins over expired", record: &OTPRecord{Used: true, ExpiresAt: now.Add(-time.Hour)}, want: OTPStatusUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Status(now); got != tt.want {
				t.Fatalf("Status() = %v, want %v", got, tt.want)
			}
		})
	}
}
