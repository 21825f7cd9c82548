package risk

// Limits are the pre-trade policy thresholds the validator enforces. The
// strategy layer owns these and passes them in per call.
type Limits struct {
	MaxPositionPct     float64 // max position value as % of equity
	MaxRiskPerTradePct float64 // max risk to the stop as % of equity
	MaxOpenPositions   int
}

// DefaultLimits returns conservative thresholds.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionPct:     25,
		MaxRiskPerTradePct: 2,
		MaxOpenPositions:   5,
	}
}

// AccountState is the account snapshot the validator checks against.
type AccountState struct {
	Equity        float64
	OpenPositions int
}
