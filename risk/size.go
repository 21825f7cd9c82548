package risk

import "math"

// SizeMethod selects how the position sizing calculator turns equity and
// price into a quantity.
type SizeMethod string

const (
	FixedAmount        SizeMethod = "fixed_amount"
	FixedQuantity      SizeMethod = "fixed_quantity"
	PercentEquity      SizeMethod = "percent_equity"
	PercentRisk        SizeMethod = "percent_risk"
	KellyCriterion     SizeMethod = "kelly_criterion"
	VolatilityAdjusted SizeMethod = "volatility_adjusted"
)

// SizeInput carries the account state and method parameters for Size. Only
// the fields the chosen method reads need to be set.
type SizeInput struct {
	Equity   float64
	Price    float64
	StopLoss float64
	Method   SizeMethod

	Amount   float64 // fixed_amount: notional to deploy
	Quantity float64 // fixed_quantity: the quantity itself
	Percent  float64 // percent_equity / percent_risk / volatility_adjusted

	// kelly_criterion
	WinRate         float64 // 0..1
	AvgWinLossRatio float64

	// volatility_adjusted
	ATR           float64
	ATRMultiplier float64
}

// SizeResult reports the computed quantity and its implied exposure.
type SizeResult struct {
	Quantity      float64
	PositionValue float64
	RiskAmount    float64
	RiskPercent   float64
	Method        SizeMethod
}

// Size computes an order quantity from account equity, current price, and
// the chosen method. The quantity is floored at 0 for every method; a zero
// risk distance or zero price sizes to 0 rather than dividing by zero.
//
// Risk amount is derived from quantity × riskPerUnit, except for
// percent_risk and volatility_adjusted where the risk amount is the
// independent variable the quantity was solved from.
func Size(in SizeInput) SizeResult {
	riskPerUnit := math.Abs(in.Price - in.StopLoss)

	var qty float64
	riskAmount := -1.0 // sentinel: derive from qty unless a method sets it

	switch in.Method {
	case FixedAmount:
		if in.Price > 0 {
			qty = in.Amount / in.Price
		}
	case FixedQuantity:
		qty = in.Quantity
	case PercentEquity:
		if in.Price > 0 {
			qty = in.Equity * in.Percent / 100 / in.Price
		}
	case PercentRisk:
		riskAmount = in.Equity * in.Percent / 100
		if riskPerUnit > 0 {
			qty = riskAmount / riskPerUnit
		}
	case KellyCriterion:
		f := kellyFraction(in.WinRate, in.AvgWinLossRatio)
		if in.Price > 0 {
			qty = in.Equity * f / in.Price
		}
	case VolatilityAdjusted:
		riskAmount = in.Equity * in.Percent / 100
		adjustedRisk := in.ATR * in.ATRMultiplier
		if adjustedRisk > 0 {
			qty = riskAmount / adjustedRisk
		}
	}

	if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		qty = 0
	}
	if riskAmount < 0 {
		riskAmount = qty * riskPerUnit
	}

	riskPct := 0.0
	if in.Equity > 0 {
		riskPct = riskAmount / in.Equity * 100
	}

	return SizeResult{
		Quantity:      qty,
		PositionValue: qty * in.Price,
		RiskAmount:    riskAmount,
		RiskPercent:   riskPct,
		Method:        in.Method,
	}
}

// kellyFraction returns the half-Kelly bet fraction, floored at 0. The full
// Kelly fraction is halved to trade growth for variance.
func kellyFraction(winRate, avgWinLossRatio float64) float64 {
	if avgWinLossRatio <= 0 {
		return 0
	}
	f := (winRate*avgWinLossRatio - (1 - winRate)) / avgWinLossRatio
	if f < 0 {
		return 0
	}
	return f / 2
}
