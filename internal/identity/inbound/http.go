package inbound

import (
	"context"

	"github.com/shandysiswandi/riskguard/internal/identity/usecase"
	"github.com/shandysiswandi/riskguard/internal/pkg/router"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)
	Session(ctx context.Context) (*usecase.SessionOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/identity/login", end.Login)
	r.POST("/api/v1/identity/verify-otp", end.VerifyOTP)
	r.GET("/api/v1/identity/session", end.Session, r.Authenticated())
}
