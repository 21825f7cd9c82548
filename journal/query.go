package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetClosedTrade returns a single closed-trade record by position id.
func (j *SQLite) GetClosedTrade(positionID string) (ClosedTrade, error) {
	var rec ClosedTrade

	row := j.db.QueryRow(`
		SELECT position_id, symbol, side, quantity, entry_price, exit_price, open_time, close_time, realized_pnl, fees, strategy_id
		FROM closed_trades
		WHERE position_id = ?`, positionID)

	err := row.Scan(
		&rec.PositionID,
		&rec.Symbol,
		&rec.Side,
		&rec.Quantity,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.RealizedPnL,
		&rec.Fees,
		&rec.StrategyID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return ClosedTrade{}, fmt.Errorf("closed trade %q not found", positionID)
		}
		return ClosedTrade{}, err
	}
	return rec, nil
}

// ListClosedBetween returns trades whose close_time is within [start, end),
// oldest first.
func (j *SQLite) ListClosedBetween(start, end time.Time) ([]ClosedTrade, error) {
	rows, err := j.db.Query(`
		SELECT position_id, symbol, side, quantity, entry_price, exit_price, open_time, close_time, realized_pnl, fees, strategy_id
		FROM closed_trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClosedTrade
	for rows.Next() {
		var rec ClosedTrade
		if err := rows.Scan(
			&rec.PositionID,
			&rec.Symbol,
			&rec.Side,
			&rec.Quantity,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.OpenTime,
			&rec.CloseTime,
			&rec.RealizedPnL,
			&rec.Fees,
			&rec.StrategyID,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFillsByOrder returns the fills journaled against one order, oldest
// first.
func (j *SQLite) ListFillsByOrder(orderID string) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, trade_id, symbol, side, qty, price, fee, time
		FROM fills
		WHERE order_id = ?
		ORDER BY time ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var rec FillRecord
		if err := rows.Scan(
			&rec.OrderID,
			&rec.TradeID,
			&rec.Symbol,
			&rec.Side,
			&rec.Qty,
			&rec.Price,
			&rec.Fee,
			&rec.Time,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
