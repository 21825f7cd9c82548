package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(id, symbol string, qty float64) Order {
	return Order{
		ID:       id,
		Symbol:   symbol,
		Side:     Buy,
		Type:     Market,
		Quantity: qty,
	}
}

func TestOrderCreate(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)

	o, err := l.Create(newOrder("O1", "BTC/USDT", 10))
	require.NoError(t, err)
	assert.Equal(t, "O1", o.ID)
	assert.Equal(t, Pending, o.Status)
	assert.False(t, o.CreatedAt.IsZero())

	_, err = l.Create(newOrder("O1", "BTC/USDT", 10))
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// An empty ID is assigned.
	gen, err := l.Create(newOrder("", "ETH/USDT", 5))
	require.NoError(t, err)
	assert.NotEmpty(t, gen.ID)
}

func TestOrderGetMissing(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	_, err := l.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Update("nope", OrderPatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.AddExecution("nope", Execution{Qty: 1, Price: 100})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.False(t, l.Delete("nope"))
}

func TestAddExecutionBlendsAveragePrice(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	_, err := l.Create(newOrder("O1", "BTC/USDT", 10))
	require.NoError(t, err)

	o, err := l.AddExecution("O1", Execution{TradeID: "T1", Qty: 4, Price: 100, Fee: 0.4})
	require.NoError(t, err)
	assert.Equal(t, Partial, o.Status)
	assert.InDelta(t, 4.0, o.FilledQty, 1e-9)
	assert.InDelta(t, 100.0, o.AvgFillPrice, 1e-9)

	o, err = l.AddExecution("O1", Execution{TradeID: "T2", Qty: 6, Price: 102, Fee: 0.6})
	require.NoError(t, err)
	assert.Equal(t, Filled, o.Status)
	assert.InDelta(t, 10.0, o.FilledQty, 1e-9)
	assert.InDelta(t, 101.2, o.AvgFillPrice, 1e-9)
	assert.InDelta(t, 1.0, o.Fees, 1e-9)
	assert.Len(t, o.Executions, 2)
}

func TestFilledQtyEqualsSumOfExecutions(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	_, err := l.Create(newOrder("O1", "BTC/USDT", 100))
	require.NoError(t, err)

	fills := []Execution{
		{Qty: 12.5, Price: 99},
		{Qty: 0.5, Price: 101},
		{Qty: 30, Price: 100.25},
		{Qty: 7, Price: 98.5},
	}

	var sumQty, sumNotional float64
	var last Order
	for _, ex := range fills {
		o, err := l.AddExecution("O1", ex)
		require.NoError(t, err)
		sumQty += ex.Qty
		sumNotional += ex.Qty * ex.Price
		last = o
	}

	assert.InDelta(t, sumQty, last.FilledQty, 1e-9)
	assert.InDelta(t, sumNotional/sumQty, last.AvgFillPrice, 1e-9)
}

func TestStatusNeverRegresses(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	_, err := l.Create(newOrder("O1", "BTC/USDT", 10))
	require.NoError(t, err)

	o, err := l.AddExecution("O1", Execution{Qty: 10, Price: 100})
	require.NoError(t, err)
	assert.Equal(t, Filled, o.Status)

	// Attempting to push a filled order back to pending is ignored.
	pending := Pending
	o, err = l.Update("O1", OrderPatch{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, Filled, o.Status)
}

func TestTerminalOrderRejectsFills(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	_, err := l.Create(newOrder("O1", "BTC/USDT", 10))
	require.NoError(t, err)

	cancelled := Cancelled
	_, err = l.Update("O1", OrderPatch{Status: &cancelled})
	require.NoError(t, err)

	// The prior state comes back untouched, no corruption.
	o, err := l.AddExecution("O1", Execution{Qty: 5, Price: 100})
	require.NoError(t, err)
	assert.Equal(t, Cancelled, o.Status)
	assert.Zero(t, o.FilledQty)
	assert.Empty(t, o.Executions)
}

func TestOrderPatchKeepsIdentity(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	created, err := l.Create(newOrder("O1", "BTC/USDT", 10))
	require.NoError(t, err)

	qty := 20.0
	strat := "mean-rev"
	o, err := l.Update("O1", OrderPatch{
		Quantity:   &qty,
		StrategyID: &strat,
		Tags:       []string{"swing"},
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, o.ID)
	assert.Equal(t, created.Symbol, o.Symbol)
	assert.Equal(t, created.CreatedAt, o.CreatedAt)
	assert.InDelta(t, 20.0, o.Quantity, 1e-9)
	assert.Equal(t, "mean-rev", o.StrategyID)
	assert.False(t, o.UpdatedAt.Before(created.UpdatedAt))
}

func TestListOpenNewestFirst(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	times := []time.Time{
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for i, ts := range times {
		o := newOrder("", "BTC/USDT", 10)
		o.ID = []string{"A", "B", "C"}[i]
		o.CreatedAt = ts
		_, err := l.Create(o)
		require.NoError(t, err)
	}

	cancelled := Cancelled
	_, err := l.Update("B", OrderPatch{Status: &cancelled})
	require.NoError(t, err)

	open := l.ListOpen("")
	require.Len(t, open, 2)
	assert.Equal(t, "C", open[0].ID)
	assert.Equal(t, "A", open[1].ID)

	assert.Empty(t, l.ListOpen("ETH/USDT"))
}

func TestListHistoryFiltersAndPaginates(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		o := newOrder("", "BTC/USDT", 10)
		o.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		o.StrategyID = "s1"
		o.Tags = []string{"a"}
		if i%2 == 1 {
			o.Symbol = "ETH/USDT"
			o.Side = Sell
			o.Tags = []string{"a", "b"}
		}
		_, err := l.Create(o)
		require.NoError(t, err)
	}

	bySymbol, total := l.ListHistory(HistoryFilter{Symbol: "ETH/USDT"})
	assert.Equal(t, 5, total)
	assert.Len(t, bySymbol, 5)
	for i := 1; i < len(bySymbol); i++ {
		assert.True(t, !bySymbol[i-1].CreatedAt.Before(bySymbol[i].CreatedAt))
	}

	byTags, total := l.ListHistory(HistoryFilter{Tags: []string{"a", "b"}})
	assert.Equal(t, 5, total)
	for _, o := range byTags {
		assert.Equal(t, Sell, o.Side)
	}

	paged, total := l.ListHistory(HistoryFilter{Page: 2, PageSize: 4})
	assert.Equal(t, 10, total)
	assert.Len(t, paged, 4)

	tail, total := l.ListHistory(HistoryFilter{Page: 3, PageSize: 4})
	assert.Equal(t, 10, total)
	assert.Len(t, tail, 2)

	past, _ := l.ListHistory(HistoryFilter{To: base.Add(-time.Hour)})
	assert.Empty(t, past)

	window, total := l.ListHistory(HistoryFilter{
		From: base.Add(2 * time.Hour),
		To:   base.Add(5 * time.Hour),
	})
	assert.Equal(t, 4, total)
	assert.Len(t, window, 4)
}

func TestCountByStatusIncludesZeroes(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	counts := l.CountByStatus()
	require.Len(t, counts, len(OrderStatuses))
	for _, s := range OrderStatuses {
		assert.Zero(t, counts[s])
	}

	_, err := l.Create(newOrder("O1", "BTC/USDT", 10))
	require.NoError(t, err)
	_, err = l.Create(newOrder("O2", "BTC/USDT", 10))
	require.NoError(t, err)
	_, err = l.AddExecution("O2", Execution{Qty: 10, Price: 100})
	require.NoError(t, err)

	counts = l.CountByStatus()
	assert.Equal(t, 1, counts[Pending])
	assert.Equal(t, 1, counts[Filled])
	assert.Zero(t, counts[Cancelled])
}

func TestListByStrategy(t *testing.T) {
	t.Parallel()

	l := NewOrderLedger(nil)
	a := newOrder("O1", "BTC/USDT", 10)
	a.StrategyID = "s1"
	b := newOrder("O2", "ETH/USDT", 5)
	b.StrategyID = "s2"
	_, err := l.Create(a)
	require.NoError(t, err)
	_, err = l.Create(b)
	require.NoError(t, err)

	got := l.ListByStrategy("s1")
	require.Len(t, got, 1)
	assert.Equal(t, "O1", got[0].ID)
}
