// Package options retrieves options chains and derives the per-contract
// metrics used to rank and filter contracts: breakeven CAGR for calls,
// annualized return for puts, Black-Scholes delta, implied leverage, and
// efficiency.
package options

import (
	"math"

	"fplot/internal/model"
)

// Defaults used when the broker supplies neither a delta nor an
// implied-volatility estimate.
const (
	DefaultRiskFreeRate = 0.05
	DefaultVolatility   = 0.30
)

// BreakevenCAGR returns the annualized return the underlying must deliver
// for a call to break even by expiry: breakeven = strike + premium,
// annualized as (1+totalReturn)^(365/dte) - 1. Returns 0 when dte,
// premium, or spot is non-positive.
func BreakevenCAGR(spot, strike, premium float64, dte int) float64 {
	if dte <= 0 || premium <= 0 || spot <= 0 {
		return 0
	}
	breakeven := strike + premium
	totalReturn := breakeven/spot - 1
	return math.Pow(1+totalReturn, 365/float64(dte)) - 1
}

// PutAnnualizedReturn returns the annualized yield of selling a put:
// premium / capitalAtRisk × 365/dte, where capital-at-risk is the dollar
// exposure if assigned net of the premium received (spot - premium).
// Returns 0 when dte, premium, or capital-at-risk is non-positive.
func PutAnnualizedReturn(spot, premium float64, dte int) float64 {
	if dte <= 0 || premium <= 0 {
		return 0
	}
	capitalAtRisk := spot - premium
	if capitalAtRisk <= 0 {
		return 0
	}
	return premium / capitalAtRisk * 365 / float64(dte)
}

// BlackScholesDelta backs out a plausible delta when the broker supplies
// none: d1 = (ln(S/K) + (r + σ²/2)T) / (σ√T), call delta Φ(d1), put delta
// Φ(d1) - 1. Returns 0 unless S, K, T, and σ are all positive.
func BlackScholesDelta(spot, strike, timeYears, riskFree, sigma float64, kind model.ContractKind) float64 {
	if spot <= 0 || strike <= 0 || timeYears <= 0 || sigma <= 0 {
		return 0
	}
	d1 := (math.Log(spot/strike) + (riskFree+0.5*sigma*sigma)*timeYears) / (sigma * math.Sqrt(timeYears))
	if kind == model.KindPut {
		return normCDF(d1) - 1
	}
	return normCDF(d1)
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// ImpliedLeverage is Ω = |Δ| × (spot / premium), the approximate option
// move per 1% underlying move. Unavailable when the premium is
// non-positive.
func ImpliedLeverage(delta, spot, premium float64) model.Metric {
	if premium <= 0 || spot <= 0 {
		return model.NoMetric()
	}
	return model.SomeMetric(math.Abs(delta) * spot / premium)
}

// Efficiency is leverage divided by the return metric, defined only when
// both are available and the return is positive. It is an interpretation
// aid, never a ranking key.
func Efficiency(leverage model.Metric, ret float64) model.Metric {
	if !leverage.Valid || ret <= 0 {
		return model.NoMetric()
	}
	return model.SomeMetric(leverage.Value / ret)
}

// EfficiencyBand maps an efficiency value to its interpretation band.
func EfficiencyBand(e model.Metric) string {
	switch {
	case !e.Valid:
		return "unavailable"
	case e.Value > 100:
		return "excellent"
	case e.Value > 50:
		return "good"
	case e.Value > 20:
		return "average"
	default:
		return "below average"
	}
}
