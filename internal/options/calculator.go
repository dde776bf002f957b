package options

import (
	"errors"

	"fplot/internal/model"
)

// CalcInput is a manually entered contract, as read off a broker screen.
// Exactly one of ImpliedVol or Delta must be present: a broker-provided
// delta wins, otherwise delta is estimated from the implied volatility.
type CalcInput struct {
	Spot       float64
	Strike     float64
	Premium    float64
	DTE        int
	Kind       model.ContractKind
	ImpliedVol model.Metric
	Delta      model.Metric
	RiskFree   float64 // 0 means DefaultRiskFreeRate
}

// CalcResult is the full derived-metric set for one contract.
type CalcResult struct {
	Return          float64
	ReturnLabel     string
	Delta           model.Metric
	DeltaFromBroker bool
	Leverage        model.Metric
	Efficiency      model.Metric
	Band            string
	StrikeVsSpotPct float64
}

// ErrNoVolatilityOrDelta reports calculator input with neither an
// implied-volatility estimate nor a broker delta.
var ErrNoVolatilityOrDelta = errors.New("either implied volatility or delta is required")

// Calculate derives all metrics for one manually supplied contract.
func Calculate(in CalcInput) (*CalcResult, error) {
	riskFree := in.RiskFree
	if riskFree == 0 {
		riskFree = DefaultRiskFreeRate
	}

	res := &CalcResult{}
	if in.Kind == model.KindPut {
		res.Return = PutAnnualizedReturn(in.Spot, in.Premium, in.DTE)
		res.ReturnLabel = "Annualized Return"
	} else {
		res.Return = BreakevenCAGR(in.Spot, in.Strike, in.Premium, in.DTE)
		res.ReturnLabel = "CAGR to Breakeven"
	}

	switch {
	case in.Delta.Valid:
		res.Delta = in.Delta
		res.DeltaFromBroker = true
	case in.ImpliedVol.Valid:
		t := float64(in.DTE) / 365.0
		res.Delta = model.SomeMetric(BlackScholesDelta(in.Spot, in.Strike, t, riskFree, in.ImpliedVol.Value, in.Kind))
	default:
		return nil, ErrNoVolatilityOrDelta
	}

	res.Leverage = ImpliedLeverage(res.Delta.Value, in.Spot, in.Premium)
	res.Efficiency = Efficiency(res.Leverage, res.Return)
	res.Band = EfficiencyBand(res.Efficiency)
	if in.Spot != 0 {
		res.StrikeVsSpotPct = (in.Strike - in.Spot) / in.Spot * 100
	}
	return res, nil
}
