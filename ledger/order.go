package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/sihu-dev/qetta-sub001/pkg/id"
)

// OrderLedger owns order records and their execution history. AddExecution
// is the only path that mutates fill state; everything else is bookkeeping
// around it.
//
// All mutations are read-compute-replace under one write lock, so a record
// is never visible mid-update. Getters and listers return copies.
type OrderLedger struct {
	mu    sync.RWMutex
	store Store[*Order]
	now   func() time.Time
}

// NewOrderLedger builds a ledger over the given store. A nil store gets the
// in-memory default.
func NewOrderLedger(store Store[*Order]) *OrderLedger {
	if store == nil {
		store = NewMemStore[*Order]()
	}
	return &OrderLedger{store: store, now: time.Now}
}

// OrderPatch is a partial update for an order. Identity fields (ID, Symbol,
// Side, CreatedAt) and fill state (FilledQty, AvgFillPrice, Executions) are
// deliberately not representable here: fill state only moves through
// AddExecution.
type OrderPatch struct {
	Type         *OrderType
	Price        *float64
	TriggerPrice *float64
	Quantity     *float64
	Status       *OrderStatus
	StrategyID   *string
	Tags         []string // replaces the tag set when non-nil
}

// Create stores the order. An empty ID is assigned a fresh one; a duplicate
// ID fails with ErrAlreadyExists.
func (l *OrderLedger) Create(o Order) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if o.ID == "" {
		o.ID = id.New()
	}
	if _, ok := l.store.Get(o.ID); ok {
		return Order{}, ErrAlreadyExists
	}
	if o.Status == "" {
		o.Status = Pending
	}
	now := l.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	l.store.Put(o.ID, o.clone())
	return o, nil
}

// Get returns the order or ErrNotFound.
func (l *OrderLedger) Get(orderID string) (Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	o, ok := l.store.Get(orderID)
	if !ok {
		return Order{}, ErrNotFound
	}
	return *o.clone(), nil
}

// Update applies a partial patch and refreshes UpdatedAt. A status change
// that would move backwards (e.g. reopening a terminal order) is ignored
// and the prior state returned.
func (l *OrderLedger) Update(orderID string, patch OrderPatch) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.store.Get(orderID)
	if !ok {
		return Order{}, ErrNotFound
	}

	next := o.clone()
	if patch.Type != nil {
		next.Type = *patch.Type
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.TriggerPrice != nil {
		next.TriggerPrice = *patch.TriggerPrice
	}
	if patch.Quantity != nil {
		next.Quantity = *patch.Quantity
	}
	if patch.Status != nil && allowedTransition(next.Status, *patch.Status) {
		next.Status = *patch.Status
	}
	if patch.StrategyID != nil {
		next.StrategyID = *patch.StrategyID
	}
	if patch.Tags != nil {
		next.Tags = append([]string(nil), patch.Tags...)
	}
	next.UpdatedAt = l.now()

	l.store.Put(next.ID, next)
	return *next.clone(), nil
}

// allowedTransition enforces forward-only status movement. Fill-derived
// statuses are recomputed by AddExecution; this guards the caller-driven
// transitions (open, cancel, reject).
func allowedTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	switch to {
	case Pending:
		// No order returns to pending.
		return from == Pending
	case Open:
		return from == Pending
	case Partial, Filled, Cancelled, Rejected:
		return true
	}
	return false
}

// Delete removes the order, reporting whether it existed. Administrative
// use only; normal lifecycles end in a terminal status, not removal.
func (l *OrderLedger) Delete(orderID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(orderID)
}

// AddExecution appends the fill, accumulates filled quantity and fees,
// re-blends the weighted average fill price, and recomputes status.
//
// Terminal orders silently reject fills: the prior state is returned
// unchanged rather than corrupting a cancelled order's accounting.
func (l *OrderLedger) AddExecution(orderID string, ex Execution) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.store.Get(orderID)
	if !ok {
		return Order{}, ErrNotFound
	}
	if o.Status == Cancelled || o.Status == Rejected {
		return *o.clone(), nil
	}

	next := o.clone()
	prevFilled := next.FilledQty
	next.Executions = append(next.Executions, ex)
	next.FilledQty += ex.Qty
	next.Fees += ex.Fee

	if combined := prevFilled + ex.Qty; combined > 0 {
		next.AvgFillPrice = (prevFilled*next.AvgFillPrice + ex.Qty*ex.Price) / combined
	} else {
		next.AvgFillPrice = 0
	}

	switch {
	case next.FilledQty >= next.Quantity:
		next.Status = Filled
	case next.FilledQty > 0:
		next.Status = Partial
	}
	next.UpdatedAt = l.now()

	l.store.Put(next.ID, next)
	return *next.clone(), nil
}

// ListOpen returns orders still working (pending, open, or partial),
// newest first. Symbol filters when non-empty.
func (l *OrderLedger) ListOpen(symbol string) []Order {
	return l.list(func(o *Order) bool {
		if symbol != "" && o.Symbol != symbol {
			return false
		}
		return o.Status == Pending || o.Status == Open || o.Status == Partial
	})
}

// ListByStatus returns orders in any of the given statuses, newest first.
func (l *OrderLedger) ListByStatus(statuses ...OrderStatus) []Order {
	want := make(map[OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	return l.list(func(o *Order) bool { return want[o.Status] })
}

// ListByStrategy returns orders tagged with the strategy id, newest first.
func (l *OrderLedger) ListByStrategy(strategyID string) []Order {
	return l.list(func(o *Order) bool { return o.StrategyID == strategyID })
}

// HistoryFilter narrows and pages ListHistory. Zero values mean "any".
// Page is 1-based; PageSize defaults to 50.
type HistoryFilter struct {
	Symbol     string
	Side       Side
	Statuses   []OrderStatus
	From, To   time.Time
	StrategyID string
	Tags       []string // an order must carry every requested tag
	Page       int
	PageSize   int
}

// ListHistory returns the filtered order history, newest first, paginated.
// The second return is the total match count before paging.
func (l *OrderLedger) ListHistory(f HistoryFilter) ([]Order, int) {
	want := make(map[OrderStatus]bool, len(f.Statuses))
	for _, s := range f.Statuses {
		want[s] = true
	}

	matches := l.list(func(o *Order) bool {
		if f.Symbol != "" && o.Symbol != f.Symbol {
			return false
		}
		if f.Side != "" && o.Side != f.Side {
			return false
		}
		if len(want) > 0 && !want[o.Status] {
			return false
		}
		if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && o.CreatedAt.After(f.To) {
			return false
		}
		if f.StrategyID != "" && o.StrategyID != f.StrategyID {
			return false
		}
		for _, tag := range f.Tags {
			if !hasTag(o.Tags, tag) {
				return false
			}
		}
		return true
	})

	total := len(matches)
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	start := (page - 1) * size
	if start >= total {
		return []Order{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matches[start:end], total
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CountByStatus returns a count per status, including every known status at
// zero when absent.
func (l *OrderLedger) CountByStatus() map[OrderStatus]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[OrderStatus]int, len(OrderStatuses))
	for _, s := range OrderStatuses {
		counts[s] = 0
	}
	for _, o := range l.store.All() {
		counts[o.Status]++
	}
	return counts
}

// list snapshots matching orders, newest first.
func (l *OrderLedger) list(match func(*Order) bool) []Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Order
	for _, o := range l.store.All() {
		if match(o) {
			out = append(out, *o.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
