package options

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fplot/internal/model"
)

func TestBreakevenCAGR_Example(t *testing.T) {
	// spot=100, strike=110, premium=5: breakeven=115, total return 15%,
	// annualized over 35 days.
	got := BreakevenCAGR(100, 110, 5, 35)
	want := math.Pow(1.15, 365.0/35.0) - 1
	assert.InDelta(t, want, got, 1e-12)
	assert.Greater(t, got, 3.0, "a 15%% move in 35 days annualizes to triple digits")
}

func TestBreakevenCAGR_Guards(t *testing.T) {
	assert.Zero(t, BreakevenCAGR(100, 110, 5, 0))
	assert.Zero(t, BreakevenCAGR(100, 110, 5, -3))
	assert.Zero(t, BreakevenCAGR(100, 110, 0, 35))
	assert.Zero(t, BreakevenCAGR(0, 110, 5, 35))
}

func TestPutAnnualizedReturn_Example(t *testing.T) {
	// spot=100, premium=3.5, dte=30: capital at risk 96.5,
	// AR = 3.5/96.5 * 365/30 ≈ 44.12%.
	got := PutAnnualizedReturn(100, 3.5, 30)
	want := 3.5 / 96.5 * 365 / 30
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 0.4412, got, 0.002)
}

func TestPutAnnualizedReturn_Guards(t *testing.T) {
	assert.Zero(t, PutAnnualizedReturn(100, 3.5, 0))
	assert.Zero(t, PutAnnualizedReturn(100, 0, 30))
	// Premium above spot: capital at risk would be negative.
	assert.Zero(t, PutAnnualizedReturn(3, 5, 30))
}

func TestBlackScholesDelta_ATM(t *testing.T) {
	// ATM call with r=5%, sigma=30%, T=90/365: d1 > 0, so delta is a bit
	// above one half; put delta is exactly call delta minus one.
	tYears := 90.0 / 365.0
	call := BlackScholesDelta(100, 100, tYears, 0.05, 0.30, model.KindCall)
	put := BlackScholesDelta(100, 100, tYears, 0.05, 0.30, model.KindPut)

	assert.Greater(t, call, 0.5)
	assert.Less(t, call, 0.6)
	assert.InDelta(t, call-1, put, 1e-12)
}

func TestBlackScholesDelta_Moneyness(t *testing.T) {
	tYears := 90.0 / 365.0
	itm := BlackScholesDelta(100, 90, tYears, 0.05, 0.30, model.KindCall)
	atm := BlackScholesDelta(100, 100, tYears, 0.05, 0.30, model.KindCall)
	otm := BlackScholesDelta(100, 110, tYears, 0.05, 0.30, model.KindCall)
	assert.Greater(t, itm, atm)
	assert.Greater(t, atm, otm)
}

func TestBlackScholesDelta_Guards(t *testing.T) {
	assert.Zero(t, BlackScholesDelta(0, 100, 1, 0.05, 0.30, model.KindCall))
	assert.Zero(t, BlackScholesDelta(100, 0, 1, 0.05, 0.30, model.KindCall))
	assert.Zero(t, BlackScholesDelta(100, 100, 0, 0.05, 0.30, model.KindCall))
	assert.Zero(t, BlackScholesDelta(100, 100, 1, 0.05, 0, model.KindCall))
}

func TestImpliedLeverage(t *testing.T) {
	lev := ImpliedLeverage(0.5, 100, 5)
	require.True(t, lev.Valid)
	assert.InDelta(t, 10, lev.Value, 1e-12)

	// Put deltas are negative; leverage uses the magnitude.
	lev = ImpliedLeverage(-0.4, 100, 4)
	require.True(t, lev.Valid)
	assert.InDelta(t, 10, lev.Value, 1e-12)

	assert.False(t, ImpliedLeverage(0.5, 100, 0).Valid)
}

func TestEfficiencyAndBands(t *testing.T) {
	eff := Efficiency(model.SomeMetric(10), 0.5)
	require.True(t, eff.Valid)
	assert.InDelta(t, 20, eff.Value, 1e-12)

	assert.False(t, Efficiency(model.NoMetric(), 0.5).Valid)
	assert.False(t, Efficiency(model.SomeMetric(10), 0).Valid)
	assert.False(t, Efficiency(model.SomeMetric(10), -0.1).Valid)

	assert.Equal(t, "unavailable", EfficiencyBand(model.NoMetric()))
	assert.Equal(t, "below average", EfficiencyBand(model.SomeMetric(15)))
	assert.Equal(t, "average", EfficiencyBand(model.SomeMetric(30)))
	assert.Equal(t, "good", EfficiencyBand(model.SomeMetric(70)))
	assert.Equal(t, "excellent", EfficiencyBand(model.SomeMetric(150)))
}

func TestCalculate_DeltaFromIV(t *testing.T) {
	res, err := Calculate(CalcInput{
		Spot: 100, Strike: 110, Premium: 5.25, DTE: 35,
		Kind:       model.KindCall,
		ImpliedVol: model.SomeMetric(0.35),
	})
	require.NoError(t, err)

	assert.Equal(t, "CAGR to Breakeven", res.ReturnLabel)
	assert.False(t, res.DeltaFromBroker)
	require.True(t, res.Delta.Valid)
	want := BlackScholesDelta(100, 110, 35.0/365.0, DefaultRiskFreeRate, 0.35, model.KindCall)
	assert.InDelta(t, want, res.Delta.Value, 1e-12)
	assert.True(t, res.Leverage.Valid)
	assert.InDelta(t, 10.0, res.StrikeVsSpotPct, 1e-9)
}

func TestCalculate_BrokerDeltaWins(t *testing.T) {
	res, err := Calculate(CalcInput{
		Spot: 100, Strike: 95, Premium: 3.5, DTE: 30,
		Kind:       model.KindPut,
		ImpliedVol: model.SomeMetric(0.35),
		Delta:      model.SomeMetric(-0.42),
	})
	require.NoError(t, err)
	assert.Equal(t, "Annualized Return", res.ReturnLabel)
	assert.True(t, res.DeltaFromBroker)
	assert.InDelta(t, -0.42, res.Delta.Value, 1e-12)
}

func TestCalculate_RequiresIVOrDelta(t *testing.T) {
	_, err := Calculate(CalcInput{Spot: 100, Strike: 110, Premium: 5, DTE: 35, Kind: model.KindCall})
	assert.ErrorIs(t, err, ErrNoVolatilityOrDelta)
}
