package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// RiskConfig bounds how much capital a single decision may commit. It is a
// value type injected once at construction and never reassigned afterwards.
type RiskConfig struct {
	// MaxPositionPercentage caps position size as a fraction of available
	// capital (0.01 = 1%).
	MaxPositionPercentage decimal.Decimal
	// MaxLeverage is retained for future use; the sizing logic does not
	// consult it.
	MaxLeverage decimal.Decimal
	// TargetDailyReturn doubles as the take-profit percentage offset.
	TargetDailyReturn decimal.Decimal
	// StopLossPercentage is the stop-loss offset from entry price.
	StopLossPercentage decimal.Decimal
	// DailyLossLimit is the maximum tolerated daily loss as a fraction of
	// starting capital.
	DailyLossLimit decimal.Decimal
}

// Validate rejects risk parameters that could size orders beyond the account.
func (r RiskConfig) Validate() error {
	if r.MaxPositionPercentage.LessThanOrEqual(decimal.Zero) || r.MaxPositionPercentage.GreaterThan(decimal.NewFromInt(1)) {
		return errors.Errorf("max position percentage must be in (0, 1], got %s", r.MaxPositionPercentage)
	}
	if r.StopLossPercentage.LessThanOrEqual(decimal.Zero) || r.StopLossPercentage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.Errorf("stop loss percentage must be in (0, 1), got %s", r.StopLossPercentage)
	}
	if r.TargetDailyReturn.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("target daily return must be positive, got %s", r.TargetDailyReturn)
	}
	if r.DailyLossLimit.IsNegative() {
		return errors.Errorf("daily loss limit must not be negative, got %s", r.DailyLossLimit)
	}
	return nil
}
