package pipeline

import (
	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/model"

	"github.com/shopspring/decimal"
)

// Thresholds are the inclusive upper bounds of the optimal and regular tiers,
// in account currency units per result.
type Thresholds struct {
	Optimal decimal.Decimal
	Regular decimal.Decimal
}

// DefaultThresholds returns the 0.4 / 0.9 tiers.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Optimal: decimal.RequireFromString("0.4"),
		Regular: decimal.RequireFromString("0.9"),
	}
}

// ThresholdsFromConfig converts the [thresholds] section. Non-positive values
// keep the defaults.
func ThresholdsFromConfig(cfg config.Config) Thresholds {
	th := DefaultThresholds()
	if cfg.Thresholds.Optimal > 0 {
		th.Optimal = decimal.NewFromFloat(cfg.Thresholds.Optimal)
	}
	if cfg.Thresholds.Regular > 0 {
		th.Regular = decimal.NewFromFloat(cfg.Thresholds.Regular)
	}
	return th
}

// divisionPrecision keeps repeating quotients exact to far below a cent.
const divisionPrecision = 16

// CostPerResult is spend / conversions, or zero when there are no conversions.
func CostPerResult(spend decimal.Decimal, conversions int64) decimal.Decimal {
	if conversions <= 0 {
		return decimal.Zero
	}
	return spend.DivRound(decimal.NewFromInt(conversions), divisionPrecision)
}

// Status maps a cost-per-result onto its tier. Bounds are inclusive.
func (th Thresholds) Status(cpr decimal.Decimal) model.Status {
	switch {
	case cpr.IsZero():
		return model.StatusAwaitingData
	case cpr.LessThanOrEqual(th.Optimal):
		return model.StatusOptimal
	case cpr.LessThanOrEqual(th.Regular):
		return model.StatusRegular
	default:
		return model.StatusCritical
	}
}

// KPI derives the full KPI for a spend/conversions pair.
func (th Thresholds) KPI(spend decimal.Decimal, conversions int64) model.KPI {
	cpr := CostPerResult(spend, conversions)
	return model.KPI{
		Spend:         spend,
		Conversions:   conversions,
		CostPerResult: cpr,
		Status:        th.Status(cpr),
	}
}
