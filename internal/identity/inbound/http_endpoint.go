package inbound

import (
	"github.com/shandysiswandi/riskguard/internal/identity/usecase"
	"github.com/shandysiswandi/riskguard/internal/pkg/router"
)

// HTTPEndpoint exposes the login, OTP verification and session handlers.
type HTTPEndpoint struct {
	uc uc
}

// Login scores the attempt and either grants a token or starts an OTP challenge.
// @Summary Risk-based login
// @Description Scores the contextual signals. Low risk returns a token, medium or high risk sends a one-time code.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Login decision"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Username:        req.Username,
		Password:        req.Password,
		Email:           req.Email,
		KnownDevice:     req.KnownDevice,
		KnownLocation:   req.KnownLocation,
		LoginTimeNormal: req.LoginTimeNormal,
		FailedAttempts:  req.FailedAttempts,
		ClientIP:        r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		Status:      resp.Status.String(),
		MfaRequired: resp.MfaRequired,
		Token:       resp.Token,
		RiskAnalysis: RiskAnalysis{
			Score:   resp.Assessment.Score,
			Level:   resp.Assessment.Level.String(),
			Reasons: resp.Assessment.Reasons,
		},
	}, nil
}

// VerifyOTP consumes the pending one-time code.
// @Summary Verify one-time code
// @Description Verifies the code sent after a risky login. Every rejection returns the same message.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "OTP payload"
// @Success 200 {object} router.successResponse{data=VerifyOTPResponse} "Access granted"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many attempts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/verify-otp [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Username: req.Username,
		Code:     req.OTPCode,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{Status: resp.Status.String(), Token: resp.Token}, nil
}

// Session describes the caller's bearer token.
// @Summary Current session
// @Tags Identity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=SessionResponse} "Session"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/identity/session [get]
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		Username:  resp.Principal,
		RiskLevel: resp.RiskLevel,
		AMR:       resp.AMR,
		IssuedAt:  resp.IssuedAt,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}
