// Package ledger implements the order and position accounting core: it
// records orders and their execution history, derives open/closed positions
// from fills, and keeps the mark-to-market state current.
//
// The order ledger and the position ledger are deliberately decoupled. The
// core never auto-derives positions from orders; the calling strategy layer
// translates each accepted execution into the matching position mutation.
package ledger

import "time"

// Side is the direction of an order or position.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Direction returns +1 for buy/long and -1 for sell/short.
func (s Side) Direction() float64 {
	if s == Sell {
		return -1
	}
	return 1
}

// OrderType distinguishes how an order is priced and triggered.
type OrderType string

const (
	Market    OrderType = "market"
	Limit     OrderType = "limit"
	Stop      OrderType = "stop"
	StopLimit OrderType = "stop_limit"
)

// OrderStatus is the fill-progress state of an order.
//
// Transitions are forward only: an order never returns to Pending once it
// has fills, and Cancelled/Rejected are terminal.
type OrderStatus string

const (
	Pending   OrderStatus = "pending"
	Open      OrderStatus = "open"
	Partial   OrderStatus = "partial"
	Filled    OrderStatus = "filled"
	Cancelled OrderStatus = "cancelled"
	Rejected  OrderStatus = "rejected"
)

// OrderStatuses lists every known status, in lifecycle order. CountByStatus
// reports all of them, zero-filled when absent.
var OrderStatuses = []OrderStatus{Pending, Open, Partial, Filled, Cancelled, Rejected}

// Terminal reports whether no further status transition is legal.
func (s OrderStatus) Terminal() bool {
	return s == Filled || s == Cancelled || s == Rejected
}

// Execution is a discrete quantity-at-price event attached to exactly one
// order. Executions are append-only; the order's filled quantity always
// equals the sum of its executions' quantities.
type Execution struct {
	TradeID string
	Qty     float64
	Price   float64
	Fee     float64
	Time    time.Time
}

// Order is a trade order and its accumulated fill state.
type Order struct {
	ID           string
	Symbol       string
	Side         Side
	Type         OrderType
	Price        float64 // limit price, when applicable
	TriggerPrice float64 // stop trigger, when applicable
	Quantity     float64
	FilledQty    float64
	AvgFillPrice float64
	Fees         float64
	Executions   []Execution
	Status       OrderStatus
	StrategyID   string
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (o *Order) clone() *Order {
	cp := *o
	cp.Executions = append([]Execution(nil), o.Executions...)
	cp.Tags = append([]string(nil), o.Tags...)
	return &cp
}

// PositionStatus is open or closed; closed positions remain queryable but
// are never mutated again.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// PartialExit records closing part of a position's quantity while leaving
// the remainder open.
type PartialExit struct {
	Time        time.Time
	Price       float64
	Qty         float64
	RealizedPnL float64
	ExitPercent float64 // percent of the quantity held just before this exit
}

// Position is a symbol exposure derived from fills.
//
// MFE and MAE are the best and worst unrealized PnL% the position reached
// while open, tracked from the running peak/trough price. They only ever
// move toward their respective extreme and freeze once the position closes.
type Position struct {
	ID               string
	Symbol           string
	Side             Side
	Qty              float64 // remaining open quantity
	InitialQty       float64
	EntryPrice       float64
	CurrentPrice     float64
	UnrealizedPnL    float64
	UnrealizedPnLPct float64
	RealizedPnL      float64
	PeakPrice        float64
	TroughPrice      float64
	MFE              float64 // PnL% of entry at the favorable extreme
	MAE              float64 // PnL% of entry at the adverse extreme
	PartialExits     []PartialExit
	Fees             float64
	Status           PositionStatus
	StrategyID       string
	OpenedAt         time.Time
	ClosedAt         time.Time
	ExitPrice        float64
}

func (p *Position) clone() *Position {
	cp := *p
	cp.PartialExits = append([]PartialExit(nil), p.PartialExits...)
	return &cp
}
