package entity

import (
	"fmt"
	"strings"
)

type RiskLevel int8

const (
	RiskLevelLow    RiskLevel = 1
	RiskLevelMedium RiskLevel = 2
	RiskLevelHigh   RiskLevel = 3
)

func (rl RiskLevel) String() string {
	switch rl {
	case RiskLevelLow:
		return "LOW"
	case RiskLevelMedium:
		return "MEDIUM"
	case RiskLevelHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// RequiresMFA reports whether a login at this level must pass an OTP challenge.
func (rl RiskLevel) RequiresMFA() bool {
	return rl == RiskLevelMedium || rl == RiskLevelHigh
}

func RiskLevelFromString(s string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return RiskLevelLow
	case "MEDIUM":
		return RiskLevelMedium
	case "HIGH":
		return RiskLevelHigh
	default:
		return 0
	}
}

const (
	ReasonUnknownDevice      = "Unknown Device Detected"
	ReasonUnusualLocation    = "Unusual Location Detected"
	ReasonAbnormalTime       = "Login outside standard business hours"
	ReasonFailedAttempts2    = "Multiple failed attempts detected"
	ReasonFailedAttempts1    = "Previous login attempt failed"
	reasonFailedAttemptsMany = "High volume of failed attempts (%d)"
)

// ReasonFailedAttemptsMany formats the reason for three or more failed attempts.
func ReasonFailedAttemptsMany(n int) string {
	return fmt.Sprintf(reasonFailedAttemptsMany, n)
}

// RiskWeights is the score added by each triggered rule.
type RiskWeights struct {
	UnknownDevice       int
	UnknownLocation     int
	AbnormalTime        int
	FailedAttempts1     int
	FailedAttempts2     int
	FailedAttempts3Plus int
}

func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		UnknownDevice:       25,
		UnknownLocation:     25,
		AbnormalTime:        20,
		FailedAttempts1:     10,
		FailedAttempts2:     20,
		FailedAttempts3Plus: 30,
	}
}

// RiskThresholds are inclusive lower bounds for MEDIUM and HIGH.
type RiskThresholds struct {
	Medium int
	High   int
}

func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Medium: 30, High: 70}
}

// RiskPolicy is the immutable scoring configuration handed to the usecase.
type RiskPolicy struct {
	Weights    RiskWeights
	Thresholds RiskThresholds
}

func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{Weights: DefaultRiskWeights(), Thresholds: DefaultRiskThresholds()}
}

type RiskAssessment struct {
	Score int
	Level RiskLevel
	// Reasons holds one entry per triggered rule, in evaluation order.
	Reasons []string
}
