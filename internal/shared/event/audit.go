package event

import "time"

// AuditDestination is the default topic for identity audit events.
const AuditDestination string = "identity_audit"

// AuditMessage is the payload published for every login and MFA decision.
// Consumers key on User for per-principal ordering.
type AuditMessage struct {
	ID            string         `json:"id"`
	User          string         `json:"user"`
	Action        string         `json:"action"`
	Details       map[string]any `json:"details"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
}
