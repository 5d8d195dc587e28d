package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/goerror"
	"github.com/shandysiswandi/riskguard/internal/pkg/jwt"
)

type SessionOutput struct {
	Principal string
	RiskLevel string
	AMR       []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session describes the bearer token already verified by the router. A
// risk_level claim that is missing or unknown is left empty.
func (s *Usecase) Session(ctx context.Context) (*SessionOutput, error) {
	_, span := s.startSpan(ctx, "Session")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	out := &SessionOutput{
		Principal: clm.Subject,
		AMR:       clm.AMR,
	}
	if lvl := entity.RiskLevelFromString(clm.RiskLevel); lvl != 0 {
		out.RiskLevel = lvl.String()
	}
	if clm.IssuedAt != nil {
		out.IssuedAt = clm.IssuedAt.Time
	}
	if clm.ExpiresAt != nil {
		out.ExpiresAt = clm.ExpiresAt.Time
	}

	return out, nil
}
