package usecase

import (
	"github.com/shandysiswandi/riskguard/internal/identity/entity"
)

// EvaluateRisk scores signals against weights and buckets the score with
// thresholds. Rules are applied in a fixed order and Reasons follows it.
func EvaluateRisk(signals entity.SignalSet, weights entity.RiskWeights, thresholds entity.RiskThresholds) entity.RiskAssessment {
	score := 0
	reasons := make([]string, 0, 4)

	if !signals.KnownDevice {
		score += weights.UnknownDevice
		reasons = append(reasons, entity.ReasonUnknownDevice)
	}

	if !signals.KnownLocation {
		score += weights.UnknownLocation
		reasons = append(reasons, entity.ReasonUnusualLocation)
	}

	if !signals.NormalTime {
		score += weights.AbnormalTime
		reasons = append(reasons, entity.ReasonAbnormalTime)
	}

	switch n := signals.FailedAttempts; {
	case n >= 3:
		score += weights.FailedAttempts3Plus
		reasons = append(reasons, entity.ReasonFailedAttemptsMany(n))
	case n == 2:
		score += weights.FailedAttempts2
		reasons = append(reasons, entity.ReasonFailedAttempts2)
	case n == 1:
		score += weights.FailedAttempts1
		reasons = append(reasons, entity.ReasonFailedAttempts1)
	}

	level := entity.RiskLevelLow
	switch {
	case score >= thresholds.High:
		level = entity.RiskLevelHigh
	case score >= thresholds.Medium:
		level = entity.RiskLevelMedium
	}

	return entity.RiskAssessment{Score: score, Level: level, Reasons: reasons}
}
