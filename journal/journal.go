// Package journal persists ledger history outside the in-memory stores:
// closed positions and order fills, written as they happen. The ledgers
// themselves stay storage-free; the caller wires closes and fills through
// whichever Journal backend the deployment configured.
package journal

import "time"

// ClosedTrade is the durable record of a settled position.
type ClosedTrade struct {
	PositionID  string
	Symbol      string
	Side        string
	Quantity    float64 // initial quantity
	EntryPrice  float64
	ExitPrice   float64
	OpenTime    time.Time
	CloseTime   time.Time
	RealizedPnL float64
	Fees        float64
	StrategyID  string
}

// FillRecord is the durable record of one execution applied to an order.
type FillRecord struct {
	OrderID string
	TradeID string
	Symbol  string
	Side    string
	Qty     float64
	Price   float64
	Fee     float64
	Time    time.Time
}

type Journal interface {
	RecordClose(ClosedTrade) error
	RecordFill(FillRecord) error
	Close() error
}

// Nop discards everything; useful when a deployment runs without history.
type Nop struct{}

func (Nop) RecordClose(ClosedTrade) error { return nil }
func (Nop) RecordFill(FillRecord) error   { return nil }
func (Nop) Close() error                  { return nil }
