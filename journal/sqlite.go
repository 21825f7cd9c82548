package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Journal backed by a sqlite database file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordClose(t ClosedTrade) error {
	_, err := j.db.Exec(`
		INSERT INTO closed_trades
		(position_id, symbol, side, quantity, entry_price, exit_price, open_time, close_time, realized_pnl, fees, strategy_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PositionID, t.Symbol, t.Side, t.Quantity, t.EntryPrice,
		t.ExitPrice, t.OpenTime, t.CloseTime, t.RealizedPnL, t.Fees, t.StrategyID,
	)
	return err
}

func (j *SQLite) RecordFill(f FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(order_id, trade_id, symbol, side, qty, price, fee, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.OrderID, f.TradeID, f.Symbol, f.Side, f.Qty, f.Price, f.Fee, f.Time,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
