package entity

import "time"

type AuditAction string

const (
	AuditActionLoginAttempt AuditAction = "LOGIN_ATTEMPT"
	AuditActionMFAChallenge AuditAction = "MFA_CHALLENGE"
	AuditActionMFASuccess   AuditAction = "MFA_SUCCESS"
	AuditActionMFAFailed    AuditAction = "MFA_FAILED"
)

func (a AuditAction) String() string {
	return string(a)
}

// AuditTriggerRiskThreshold is the MFA_CHALLENGE trigger detail.
const AuditTriggerRiskThreshold = "risk_threshold_exceeded"

type AuditEvent struct {
	ID            string         `json:"id"`
	Principal     string         `json:"user"`
	Action        AuditAction    `json:"action"`
	Details       map[string]any `json:"details"`
	OccurredAt    time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}
