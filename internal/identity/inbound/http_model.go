package inbound

import (
	"net/http"
	"time"
)

type LoginRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	Email           string `json:"email"`
	KnownDevice     bool   `json:"known_device"`
	KnownLocation   bool   `json:"known_location"`
	LoginTimeNormal bool   `json:"login_time_normal"`
	FailedAttempts  int    `json:"failed_attempts"`
}

type RiskAnalysis struct {
	Score   int      `json:"score"`
	Level   string   `json:"level"`
	Reasons []string `json:"reasons"`
}

type LoginResponse struct {
	Status       string       `json:"status"`
	MfaRequired  bool         `json:"mfa_required"`
	Token        string       `json:"token,omitempty"`
	RiskAnalysis RiskAnalysis `json:"risk_analysis"`
}

func (r LoginResponse) Message() string {
	if r.MfaRequired {
		return "Risk detected. MFA required."
	}
	return "Login successful"
}

type VerifyOTPRequest struct {
	Username string `json:"username"`
	OTPCode  string `json:"otp_code"`
}

type VerifyOTPResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

func (VerifyOTPResponse) Message() string {
	return "OTP Verified. Access Granted."
}

type SessionResponse struct {
	Username  string    `json:"username"`
	RiskLevel string    `json:"risk_level,omitempty"`
	AMR       []string  `json:"amr"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (SessionResponse) StatusCode() int {
	return http.StatusOK
}
