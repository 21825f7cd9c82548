package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('closed_trades','fills')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["closed_trades"])
	assert.True(t, found["fills"])
}

func TestSQLiteClosedTradeRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	open := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	closed := time.Date(2026, 3, 2, 15, 45, 0, 0, time.UTC)

	rec := ClosedTrade{
		PositionID:  "P1",
		Symbol:      "BTC/USDT",
		Side:        "buy",
		Quantity:    10,
		EntryPrice:  100,
		ExitPrice:   110,
		OpenTime:    open,
		CloseTime:   closed,
		RealizedPnL: 98,
		Fees:        2,
		StrategyID:  "mean-rev",
	}
	require.NoError(t, j.RecordClose(rec))

	got, err := j.GetClosedTrade("P1")
	require.NoError(t, err)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Side, got.Side)
	assert.InDelta(t, rec.RealizedPnL, got.RealizedPnL, 1e-9)
	assert.True(t, got.CloseTime.Equal(closed))

	_, err = j.GetClosedTrade("missing")
	assert.Error(t, err)
}

func TestSQLiteListClosedBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"P1", "P2", "P3"} {
		require.NoError(t, j.RecordClose(ClosedTrade{
			PositionID: id,
			Symbol:     "BTC/USDT",
			Side:       "buy",
			OpenTime:   base,
			CloseTime:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := j.ListClosedBetween(base.Add(30*time.Minute), base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P2", got[0].PositionID)
	assert.Equal(t, "P3", got[1].PositionID)
}

func TestSQLiteFills(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	fills := []FillRecord{
		{OrderID: "O1", TradeID: "T1", Symbol: "BTC/USDT", Side: "buy", Qty: 4, Price: 100, Time: at},
		{OrderID: "O1", TradeID: "T2", Symbol: "BTC/USDT", Side: "buy", Qty: 6, Price: 102, Time: at.Add(time.Second)},
		{OrderID: "O2", TradeID: "T3", Symbol: "ETH/USDT", Side: "sell", Qty: 1, Price: 2000, Time: at},
	}
	for _, f := range fills {
		require.NoError(t, j.RecordFill(f))
	}

	got, err := j.ListFillsByOrder("O1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].TradeID)
	assert.InDelta(t, 6.0, got[1].Qty, 1e-9)
}
