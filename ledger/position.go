package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/sihu-dev/qetta-sub001/pkg/id"
	"github.com/sihu-dev/qetta-sub001/risk"
)

// PositionLedger owns position records and their partial-exit history. A
// symbol index enforces at most one open position per symbol; UpdatePrice,
// Close and AddPartialExit all resolve through it.
type PositionLedger struct {
	mu       sync.RWMutex
	store    Store[*Position]
	bySymbol map[string]string // symbol -> open position id
	now      func() time.Time
}

// NewPositionLedger builds a ledger over the given store. A nil store gets
// the in-memory default.
func NewPositionLedger(store Store[*Position]) *PositionLedger {
	if store == nil {
		store = NewMemStore[*Position]()
	}
	return &PositionLedger{
		store:    store,
		bySymbol: make(map[string]string),
		now:      time.Now,
	}
}

// PositionPatch is a partial update for a position. Identity and accounting
// fields stay out: quantity, PnL, and excursion state move only through
// UpdatePrice, AddPartialExit and Close.
type PositionPatch struct {
	Status     *PositionStatus
	StrategyID *string
}

// Create stores the position. Creating a second open position for a symbol
// that already has one fails with ErrAlreadyOpenForSymbol; the one-open-
// position-per-symbol invariant depends on rejecting here.
func (l *PositionLedger) Create(p Position) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p.ID == "" {
		p.ID = id.New()
	}
	if _, ok := l.store.Get(p.ID); ok {
		return Position{}, ErrAlreadyExists
	}
	if p.Status == "" {
		p.Status = PositionOpen
	}
	if p.Status == PositionOpen {
		if _, busy := l.bySymbol[p.Symbol]; busy {
			return Position{}, ErrAlreadyOpenForSymbol
		}
	}
	if p.InitialQty == 0 {
		p.InitialQty = p.Qty
	}
	if p.CurrentPrice == 0 {
		p.CurrentPrice = p.EntryPrice
	}
	if p.PeakPrice == 0 {
		p.PeakPrice = p.EntryPrice
	}
	if p.TroughPrice == 0 {
		p.TroughPrice = p.EntryPrice
	}
	if p.OpenedAt.IsZero() {
		p.OpenedAt = l.now()
	}

	l.store.Put(p.ID, p.clone())
	if p.Status == PositionOpen {
		l.bySymbol[p.Symbol] = p.ID
	}
	return p, nil
}

// Get returns the position or ErrNotFound.
func (l *PositionLedger) Get(positionID string) (Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.store.Get(positionID)
	if !ok {
		return Position{}, ErrNotFound
	}
	return *p.clone(), nil
}

// Update applies a partial patch. When the merged status becomes closed the
// symbol index entry is demoted; accounting fields are untouched, so Close
// remains the way to settle a position properly.
func (l *PositionLedger) Update(positionID string, patch PositionPatch) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.store.Get(positionID)
	if !ok {
		return Position{}, ErrNotFound
	}

	next := p.clone()
	if patch.Status != nil && next.Status == PositionOpen {
		next.Status = *patch.Status
	}
	if patch.StrategyID != nil {
		next.StrategyID = *patch.StrategyID
	}
	if next.Status == PositionClosed && l.bySymbol[next.Symbol] == next.ID {
		delete(l.bySymbol, next.Symbol)
	}

	l.store.Put(next.ID, next)
	return *next.clone(), nil
}

// Delete removes the position, clearing its symbol index entry if present.
func (l *PositionLedger) Delete(positionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.store.Get(positionID)
	if !ok {
		return false
	}
	if l.bySymbol[p.Symbol] == p.ID {
		delete(l.bySymbol, p.Symbol)
	}
	return l.store.Delete(positionID)
}

// UpdatePrice marks the symbol's open position to the given price: it
// recomputes unrealized PnL and advances the peak/trough excursion state.
// No open position for the symbol is a no-op.
//
// MFE only advances when a new favorable extreme prints and MAE only when a
// new adverse one does, so neither ever regresses while the position is
// open.
func (l *PositionLedger) UpdatePrice(symbol string, price float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pid, ok := l.bySymbol[symbol]
	if !ok {
		return
	}
	p, ok := l.store.Get(pid)
	if !ok || p.Status != PositionOpen {
		return
	}

	next := p.clone()
	next.CurrentPrice = price
	long := next.Side != Sell
	next.UnrealizedPnL = risk.PnL(next.EntryPrice, price, next.Qty, long)
	next.UnrealizedPnLPct = risk.PnLPercent(next.EntryPrice, price, long)

	if price > next.PeakPrice {
		next.PeakPrice = price
		excursion := risk.PnLPercent(next.EntryPrice, price, long)
		if long {
			next.MFE = excursion
		} else {
			next.MAE = excursion
		}
	}
	if price < next.TroughPrice {
		next.TroughPrice = price
		excursion := risk.PnLPercent(next.EntryPrice, price, long)
		if long {
			next.MAE = excursion
		} else {
			next.MFE = excursion
		}
	}

	l.store.Put(next.ID, next)
}

// Close settles the position at exitPrice: realized PnL is the sum of all
// partial-exit PnL plus the final slice, minus accumulated fees. Unrealized
// fields are zeroed and the symbol index entry removed. Anything but an
// open position returns ErrNotFound.
func (l *PositionLedger) Close(positionID string, exitPrice float64, at time.Time) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.store.Get(positionID)
	if !ok || p.Status != PositionOpen {
		return Position{}, ErrNotFound
	}

	next := p.clone()
	long := next.Side != Sell
	final := risk.PnL(next.EntryPrice, exitPrice, next.Qty, long)
	l.settleLocked(next, exitPrice, at, sumPartialPnL(next)+final)
	return *next.clone(), nil
}

// AddPartialExit closes part of the position at exitPrice. The requested
// quantity is clamped to what is held; exits never drive quantity below
// zero. Draining the last of the quantity runs the same terminal path as
// Close.
func (l *PositionLedger) AddPartialExit(positionID string, exitPrice, qty float64, at time.Time) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.store.Get(positionID)
	if !ok || p.Status != PositionOpen {
		return Position{}, ErrNotFound
	}

	next := p.clone()
	before := next.Qty
	if qty > before {
		qty = before
	}
	if qty <= 0 {
		return *next.clone(), nil
	}

	long := next.Side != Sell
	slicePnL := risk.PnL(next.EntryPrice, exitPrice, qty, long)
	exit := PartialExit{
		Time:        at,
		Price:       exitPrice,
		Qty:         qty,
		RealizedPnL: slicePnL,
		ExitPercent: qty / before * 100,
	}
	next.PartialExits = append(next.PartialExits, exit)
	next.Qty = before - qty

	if next.Qty <= 0 {
		next.Qty = 0
		l.settleLocked(next, exitPrice, at, sumPartialPnL(next))
	} else {
		next.UnrealizedPnL = risk.PnL(next.EntryPrice, next.CurrentPrice, next.Qty, long)
		l.store.Put(next.ID, next)
	}
	return *next.clone(), nil
}

// settleLocked is the shared terminal path for Close and a draining partial
// exit. grossPnL is pre-fee.
func (l *PositionLedger) settleLocked(p *Position, exitPrice float64, at time.Time, grossPnL float64) {
	p.Status = PositionClosed
	p.ExitPrice = exitPrice
	p.ClosedAt = at
	p.RealizedPnL = grossPnL - p.Fees
	p.UnrealizedPnL = 0
	p.UnrealizedPnLPct = 0
	p.Qty = 0

	l.store.Put(p.ID, p)
	if l.bySymbol[p.Symbol] == p.ID {
		delete(l.bySymbol, p.Symbol)
	}
}

func sumPartialPnL(p *Position) float64 {
	var total float64
	for _, pe := range p.PartialExits {
		total += pe.RealizedPnL
	}
	return total
}

// GetOpenBySymbol resolves the symbol's open position through the index.
func (l *PositionLedger) GetOpenBySymbol(symbol string) (Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pid, ok := l.bySymbol[symbol]
	if !ok {
		return Position{}, ErrNotFound
	}
	p, ok := l.store.Get(pid)
	if !ok {
		return Position{}, ErrNotFound
	}
	return *p.clone(), nil
}

// ListOpen returns open positions, newest-opened first. Symbol filters when
// non-empty.
func (l *PositionLedger) ListOpen(symbol string) []Position {
	return l.list(func(p *Position) bool {
		if symbol != "" && p.Symbol != symbol {
			return false
		}
		return p.Status == PositionOpen
	}, byOpenedDesc)
}

// ListClosed returns closed positions, newest-closed first, optionally
// bounded by close time.
func (l *PositionLedger) ListClosed(from, to time.Time) []Position {
	return l.list(func(p *Position) bool {
		if p.Status != PositionClosed {
			return false
		}
		if !from.IsZero() && p.ClosedAt.Before(from) {
			return false
		}
		if !to.IsZero() && p.ClosedAt.After(to) {
			return false
		}
		return true
	}, byClosedDesc)
}

// ListByStrategy returns the strategy's positions, newest-opened first.
func (l *PositionLedger) ListByStrategy(strategyID string) []Position {
	return l.list(func(p *Position) bool { return p.StrategyID == strategyID }, byOpenedDesc)
}

// TotalUnrealizedPnL sums unrealized PnL over all open positions.
func (l *PositionLedger) TotalUnrealizedPnL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total float64
	for _, p := range l.store.All() {
		if p.Status == PositionOpen {
			total += p.UnrealizedPnL
		}
	}
	return total
}

// CountOpen returns the number of open positions (the symbol index size).
func (l *PositionLedger) CountOpen() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bySymbol)
}

func byOpenedDesc(a, b Position) bool {
	if a.OpenedAt.Equal(b.OpenedAt) {
		return a.ID > b.ID
	}
	return a.OpenedAt.After(b.OpenedAt)
}

func byClosedDesc(a, b Position) bool {
	if a.ClosedAt.Equal(b.ClosedAt) {
		return a.ID > b.ID
	}
	return a.ClosedAt.After(b.ClosedAt)
}

func (l *PositionLedger) list(match func(*Position) bool, less func(a, b Position) bool) []Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Position
	for _, p := range l.store.All() {
		if match(p) {
			out = append(out, *p.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
