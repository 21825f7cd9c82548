package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV is a Journal writing closed trades and fills to two flat files.
type CSV struct {
	trades *csv.Writer
	fills  *csv.Writer
	tf, ff *os.File
}

func NewCSV(tradesPath, fillsPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ff, err := os.Create(fillsPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	fw := csv.NewWriter(ff)

	if err := tw.Write([]string{"position_id", "symbol", "side", "quantity", "entry_price", "exit_price", "open_time", "close_time", "realized_pnl", "fees", "strategy_id"}); err != nil {
		return nil, err
	}
	if err := fw.Write([]string{"order_id", "trade_id", "symbol", "side", "qty", "price", "fee", "time"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}

	return &CSV{trades: tw, fills: fw, tf: tf, ff: ff}, nil
}

func (j *CSV) RecordClose(t ClosedTrade) error {
	err := j.trades.Write([]string{
		t.PositionID,
		t.Symbol,
		t.Side,
		f(t.Quantity),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		f(t.RealizedPnL),
		f(t.Fees),
		t.StrategyID,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordFill(r FillRecord) error {
	err := j.fills.Write([]string{
		r.OrderID,
		r.TradeID,
		r.Symbol,
		r.Side,
		f(r.Qty),
		f(r.Price),
		f(r.Fee),
		r.Time.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ff.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
