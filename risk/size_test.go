package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize_PercentRisk(t *testing.T) {
	t.Parallel()

	got := Size(SizeInput{
		Equity:   10000,
		Price:    100,
		StopLoss: 95,
		Method:   PercentRisk,
		Percent:  2,
	})

	assert.InDelta(t, 40.0, got.Quantity, 1e-9)
	assert.InDelta(t, 4000.0, got.PositionValue, 1e-9)
	assert.InDelta(t, 200.0, got.RiskAmount, 1e-9)
	assert.InDelta(t, 2.0, got.RiskPercent, 1e-9)
	assert.Equal(t, PercentRisk, got.Method)
}

func TestSize_FixedMethods(t *testing.T) {
	t.Parallel()

	amount := Size(SizeInput{Equity: 10000, Price: 50, Method: FixedAmount, Amount: 1000})
	assert.InDelta(t, 20.0, amount.Quantity, 1e-9)
	assert.InDelta(t, 1000.0, amount.PositionValue, 1e-9)

	qty := Size(SizeInput{Equity: 10000, Price: 50, Method: FixedQuantity, Quantity: 7})
	assert.InDelta(t, 7.0, qty.Quantity, 1e-9)

	pct := Size(SizeInput{Equity: 10000, Price: 50, Method: PercentEquity, Percent: 10})
	assert.InDelta(t, 20.0, pct.Quantity, 1e-9)
}

func TestSize_KellyCriterion(t *testing.T) {
	t.Parallel()

	// f = (0.6*2 - 0.4)/2 = 0.4, halved to 0.2 → 10000*0.2/100 = 20.
	got := Size(SizeInput{
		Equity:          10000,
		Price:           100,
		Method:          KellyCriterion,
		WinRate:         0.6,
		AvgWinLossRatio: 2,
	})
	assert.InDelta(t, 20.0, got.Quantity, 1e-9)

	// A negative edge floors the fraction at zero.
	flat := Size(SizeInput{
		Equity:          10000,
		Price:           100,
		Method:          KellyCriterion,
		WinRate:         0.3,
		AvgWinLossRatio: 1,
	})
	assert.Zero(t, flat.Quantity)
}

func TestSize_VolatilityAdjusted(t *testing.T) {
	t.Parallel()

	// riskAmount = 10000*1% = 100; adjustedRisk = 2.5*2 = 5 → qty 20.
	got := Size(SizeInput{
		Equity:        10000,
		Price:         100,
		Method:        VolatilityAdjusted,
		Percent:       1,
		ATR:           2.5,
		ATRMultiplier: 2,
	})
	assert.InDelta(t, 20.0, got.Quantity, 1e-9)
	assert.InDelta(t, 100.0, got.RiskAmount, 1e-9)
}

func TestSize_ZeroRiskDistanceIsSafe(t *testing.T) {
	t.Parallel()

	methods := []SizeMethod{
		FixedAmount, FixedQuantity, PercentEquity,
		PercentRisk, KellyCriterion, VolatilityAdjusted,
	}

	for _, m := range methods {
		m := m
		t.Run(string(m), func(t *testing.T) {
			t.Parallel()
			got := Size(SizeInput{
				Equity:   10000,
				Price:    100,
				StopLoss: 100, // zero risk distance
				Method:   m,
			})
			assert.False(t, got.Quantity < 0, "quantity must not be negative")
			assert.False(t, got.Quantity != got.Quantity, "quantity must not be NaN")
			if m == PercentRisk || m == VolatilityAdjusted {
				assert.Zero(t, got.Quantity)
			}
		})
	}
}

func TestSize_ZeroPriceIsSafe(t *testing.T) {
	t.Parallel()

	for _, m := range []SizeMethod{FixedAmount, PercentEquity, KellyCriterion} {
		got := Size(SizeInput{Equity: 10000, Price: 0, Method: m, Amount: 100, Percent: 5, WinRate: 0.6, AvgWinLossRatio: 2})
		assert.Zero(t, got.Quantity, string(m))
	}
}
