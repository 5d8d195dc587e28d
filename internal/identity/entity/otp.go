package entity

import "time"

// Codes outside these bounds are rejected by the verify input rule, so a
// policy must stay within them.
const (
	OTPMinLength = 4
	OTPMaxLength = 10
)

// OTPPolicy configures generated codes.
type OTPPolicy struct {
	Length int
	Expiry time.Duration
}

func DefaultOTPPolicy() OTPPolicy {
	return OTPPolicy{Length: 6, Expiry: 120 * time.Second}
}

// OTPStatus is the state of a principal's OTP slot.
type OTPStatus int8

const (
	OTPStatusNone OTPStatus = iota
	OTPStatusActive
	OTPStatusUsed
	OTPStatusExpired
)

func (s OTPStatus) String() string {
	switch s {
	case OTPStatusActive:
		return "ACTIVE"
	case OTPStatusUsed:
		return "USED"
	case OTPStatusExpired:
		return "EXPIRED"
	default:
		return "NONE"
	}
}

// OTPRecord is the stored challenge for one principal. CodeHash is the keyed
// digest of principal and code, never the code itself.
type OTPRecord struct {
	ID        int64
	Principal string
	CodeHash  string
	Address   string
	Channel   string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Status derives the slot state at now. Expiry is inclusive of ExpiresAt:
// a record is still active at exactly ExpiresAt.
func (r *OTPRecord) Status(now time.Time) OTPStatus {
	switch {
	case r == nil:
		return OTPStatusNone
	case r.Used:
		return OTPStatusUsed
	case now.After(r.ExpiresAt):
		return OTPStatusExpired
	default:
		return OTPStatusActive
	}
}
