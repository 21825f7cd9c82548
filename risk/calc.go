// Package risk holds the pre-trade arithmetic: PnL and margin primitives,
// position sizing, and order validation against configured limits.
//
// Everything here is a pure function. Ratio formulas resolve division by
// zero to 0 rather than returning NaN or Inf.
package risk

import "math"

// Defaults used when a caller passes a non-positive rate or multiplier.
const (
	DefaultMaintenanceMarginRate = 0.5
	DefaultATRMultiplier         = 2.0
)

func direction(long bool) float64 {
	if long {
		return 1
	}
	return -1
}

// PnL returns direction-aware profit/loss for a quantity held from entry to
// exit.
func PnL(entry, exit, qty float64, long bool) float64 {
	return direction(long) * (exit - entry) * qty
}

// PnLPercent returns PnL as a percent of the entry price, 0 if entry is 0.
func PnLPercent(entry, exit float64, long bool) float64 {
	if entry == 0 {
		return 0
	}
	return direction(long) * (exit - entry) / entry * 100
}

// Margin returns the margin required for a position value at the given
// leverage. Non-positive leverage means unleveraged: the position value is
// returned unmodified.
func Margin(positionValue, leverage float64) float64 {
	if leverage <= 0 {
		return positionValue
	}
	return positionValue / leverage
}

// Leverage returns positionValue over equity, 0 if equity is non-positive.
func Leverage(positionValue, equity float64) float64 {
	if equity <= 0 {
		return 0
	}
	return positionValue / equity
}

// LiquidationPrice estimates the price at which a leveraged position is
// liquidated. maintenanceRate defaults to DefaultMaintenanceMarginRate when
// non-positive; non-positive leverage returns 0.
func LiquidationPrice(entry, leverage, maintenanceRate float64, long bool) float64 {
	if leverage <= 0 {
		return 0
	}
	if maintenanceRate <= 0 {
		maintenanceRate = DefaultMaintenanceMarginRate
	}
	return entry * (1 - direction(long)*(1/leverage)*(1-maintenanceRate))
}

// StopLossPrice places a stop pct percent against the position from entry.
func StopLossPrice(entry, pct float64, long bool) float64 {
	return entry * (1 - direction(long)*pct/100)
}

// TakeProfitPrice places a target pct percent in favor of the position.
func TakeProfitPrice(entry, pct float64, long bool) float64 {
	return entry * (1 + direction(long)*pct/100)
}

// ATRStop places a stop multiplier×ATR against the position from entry.
// Non-positive multipliers default to DefaultATRMultiplier.
func ATRStop(entry, atr, multiplier float64, long bool) float64 {
	if multiplier <= 0 {
		multiplier = DefaultATRMultiplier
	}
	return entry - direction(long)*atr*multiplier
}

// TakeProfitFromRR derives a target from the stop distance and a
// risk:reward ratio.
func TakeProfitFromRR(entry, stopLoss, rrRatio float64, long bool) float64 {
	return entry + direction(long)*math.Abs(entry-stopLoss)*rrRatio
}

// TrailingStop ratchets a trailing stop toward the current price. The
// candidate trails trailPct percent behind; the stop only ever tightens —
// for a long the result is never below currentStop, for a short never
// above.
func TrailingStop(currentStop, currentPrice, trailPct float64, long bool) float64 {
	candidate := currentPrice * (1 - direction(long)*trailPct/100)
	if long {
		return math.Max(currentStop, candidate)
	}
	return math.Min(currentStop, candidate)
}

// AverageEntry blends a size-up fill into an existing average entry price,
// 0 if the combined quantity is 0.
func AverageEntry(existingQty, existingAvg, newQty, newPrice float64) float64 {
	combined := existingQty + newQty
	if combined == 0 {
		return 0
	}
	return (existingQty*existingAvg + newQty*newPrice) / combined
}

// RMultiple expresses the move from entry to current price as a multiple of
// the initial risk distance (entry to stop), 0 if that distance is 0.
func RMultiple(entry, current, stopLoss float64, long bool) float64 {
	riskDist := math.Abs(entry - stopLoss)
	if riskDist == 0 {
		return 0
	}
	return direction(long) * (current - entry) / riskDist
}

// RiskReward returns reward distance over risk distance, 0 if the risk
// distance is 0.
func RiskReward(entry, stopLoss, takeProfit float64) float64 {
	riskDist := math.Abs(entry - stopLoss)
	if riskDist == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / riskDist
}

// ApplySlippage returns the effective fill price after slipPct percent of
// adverse slippage: buys pay up, sells receive less.
func ApplySlippage(price, slipPct float64, long bool) float64 {
	return price * (1 + direction(long)*slipPct/100)
}
