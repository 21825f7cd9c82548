package risk

import (
	"fmt"
	"math"
)

// OrderIntent is the proposed order the validator inspects. Side and Type
// use the same string values as the ledger's enums.
type OrderIntent struct {
	Symbol       string
	Side         string // "buy" or "sell"
	Type         string // "market", "limit", "stop", "stop_limit"
	Quantity     float64
	LimitPrice   float64
	TriggerPrice float64
	StopLoss     *float64
	TakeProfit   *float64
}

// Issue is one coded validation finding.
type Issue struct {
	Code string
	Msg  string
}

// Result is the validator's verdict. Errors block acceptance; warnings
// never do, so the two are kept in separate lists rather than merged with a
// severity flag.
type Result struct {
	Valid    bool
	Errors   []Issue
	Warnings []Issue
}

func (r *Result) fail(code, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Code: code, Msg: fmt.Sprintf(format, args...)})
	r.Valid = false
}

func (r *Result) warn(code, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Msg: fmt.Sprintf(format, args...)})
}

// Validate runs every pre-trade check against the intent. Checks are
// independent and all are evaluated, so a caller can render every failing
// reason at once.
func Validate(intent OrderIntent, limits Limits, currentPrice float64, acct AccountState) Result {
	r := Result{Valid: true}
	long := intent.Side != "sell"

	if intent.Symbol == "" {
		r.fail("EMPTY_SYMBOL", "symbol must not be empty")
	}
	if intent.Quantity <= 0 {
		r.fail("BAD_QUANTITY", "quantity must be positive, got %g", intent.Quantity)
	}

	if (intent.Type == "limit" || intent.Type == "stop_limit") && intent.LimitPrice <= 0 {
		r.fail("NO_LIMIT_PRICE", "%s order requires a positive limit price", intent.Type)
	}
	if (intent.Type == "stop" || intent.Type == "stop_limit") && intent.TriggerPrice <= 0 {
		r.fail("NO_TRIGGER_PRICE", "%s order requires a positive trigger price", intent.Type)
	}

	positionValue := intent.Quantity * currentPrice
	if acct.Equity > 0 {
		positionPct := positionValue / acct.Equity * 100
		if positionPct > limits.MaxPositionPct {
			r.fail("POSITION_TOO_LARGE",
				"position is %.2f%% of equity, max %.2f%%", positionPct, limits.MaxPositionPct)
		}
	}

	if acct.OpenPositions >= limits.MaxOpenPositions {
		r.fail("TOO_MANY_POSITIONS",
			"open positions %d at max %d", acct.OpenPositions, limits.MaxOpenPositions)
	}

	if intent.StopLoss == nil {
		r.warn("NO_STOP_LOSS", "order has no stop-loss")
	} else {
		stop := *intent.StopLoss
		if acct.Equity > 0 {
			riskPct := math.Abs(currentPrice-stop) * intent.Quantity / acct.Equity * 100
			if riskPct > limits.MaxRiskPerTradePct {
				r.fail("RISK_TOO_HIGH",
					"risk is %.2f%% of equity, max %.2f%%", riskPct, limits.MaxRiskPerTradePct)
			}
		}
		if long && stop >= currentPrice {
			r.fail("STOP_ABOVE_PRICE", "long stop %.4f must be below price %.4f", stop, currentPrice)
		}
		if !long && stop <= currentPrice {
			r.fail("STOP_BELOW_PRICE", "short stop %.4f must be above price %.4f", stop, currentPrice)
		}
	}

	if intent.TakeProfit != nil {
		target := *intent.TakeProfit
		if long && target <= currentPrice {
			r.fail("TARGET_BELOW_PRICE", "long target %.4f must be above price %.4f", target, currentPrice)
		}
		if !long && target >= currentPrice {
			r.fail("TARGET_ABOVE_PRICE", "short target %.4f must be below price %.4f", target, currentPrice)
		}
	}

	return r
}
