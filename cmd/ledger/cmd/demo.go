package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/sihu-dev/qetta-sub001/config"
	"github.com/sihu-dev/qetta-sub001/journal"
	"github.com/sihu-dev/qetta-sub001/ledger"
	"github.com/sihu-dev/qetta-sub001/risk"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted end-to-end accounting flow",
	Long: `Run one full trade lifecycle through the core: size a position,
validate the order, record it, apply fills, mark the position to market,
take a partial exit, and close the remainder. Closed trades and fills are
written to the configured journal.`,
	RunE: runDemo,
}

var demoConfigPath string

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVarP(&demoConfigPath, "config", "c", "", "config file (defaults apply when omitted)")
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.FillsFile)
	default:
		return journal.Nop{}, nil
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if demoConfigPath != "" {
		loaded, err := config.LoadFromFile(demoConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	orders := ledger.NewOrderLedger(nil)
	positions := ledger.NewPositionLedger(nil)

	const (
		symbol = "BTC/USDT"
		price  = 100.0
		stop   = 95.0
	)
	equity := cfg.Account.Equity

	// Size the position.
	size := risk.Size(risk.SizeInput{
		Equity:   equity,
		Price:    price,
		StopLoss: stop,
		Method:   risk.SizeMethod(cfg.Sizing.Method),
		Percent:  cfg.Sizing.Percent,
		Amount:   cfg.Sizing.Amount,
		Quantity: cfg.Sizing.Quantity,
	})
	fmt.Printf("sized %.4f units (%s): value %.2f, risk %.2f (%.2f%% of equity)\n",
		size.Quantity, size.Method, size.PositionValue, size.RiskAmount, size.RiskPercent)

	// Validate before recording.
	stopLoss := stop
	verdict := risk.Validate(risk.OrderIntent{
		Symbol:   symbol,
		Side:     "buy",
		Type:     "market",
		Quantity: size.Quantity,
		StopLoss: &stopLoss,
	}, risk.Limits{
		MaxPositionPct:     cfg.Risk.MaxPositionPct,
		MaxRiskPerTradePct: cfg.Risk.MaxRiskPerTradePct,
		MaxOpenPositions:   cfg.Risk.MaxOpenPositions,
	}, price, risk.AccountState{
		Equity:        equity,
		OpenPositions: positions.CountOpen(),
	})
	for _, w := range verdict.Warnings {
		log.Printf("[demo] warning %s: %s", w.Code, w.Msg)
	}
	if !verdict.Valid {
		for _, e := range verdict.Errors {
			log.Printf("[demo] rejected %s: %s", e.Code, e.Msg)
		}
		return fmt.Errorf("order failed validation")
	}

	// Record the order and apply two fills.
	order, err := orders.Create(ledger.Order{
		Symbol:   symbol,
		Side:     ledger.Buy,
		Type:     ledger.Market,
		Quantity: size.Quantity,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	fills := []ledger.Execution{
		{TradeID: "T1", Qty: size.Quantity * 0.4, Price: price, Time: now},
		{TradeID: "T2", Qty: size.Quantity * 0.6, Price: price + 2, Time: now.Add(time.Second)},
	}
	for _, ex := range fills {
		order, err = orders.AddExecution(order.ID, ex)
		if err != nil {
			return err
		}
		if err := j.RecordFill(journal.FillRecord{
			OrderID: order.ID,
			TradeID: ex.TradeID,
			Symbol:  order.Symbol,
			Side:    string(order.Side),
			Qty:     ex.Qty,
			Price:   ex.Price,
			Fee:     ex.Fee,
			Time:    ex.Time,
		}); err != nil {
			return err
		}
	}
	fmt.Printf("order %s: %s, filled %.4f @ avg %.4f\n",
		order.ID, order.Status, order.FilledQty, order.AvgFillPrice)

	// Open the matching position and walk it through a price path.
	pos, err := positions.Create(ledger.Position{
		Symbol:     symbol,
		Side:       ledger.Buy,
		Qty:        order.FilledQty,
		EntryPrice: order.AvgFillPrice,
		OpenedAt:   now,
	})
	if err != nil {
		return err
	}

	for _, tick := range []float64{price + 3, price + 6, price + 4} {
		positions.UpdatePrice(symbol, tick)
	}

	pos, err = positions.AddPartialExit(pos.ID, price+5, pos.Qty/2, now.Add(time.Minute))
	if err != nil {
		return err
	}
	fmt.Printf("partial exit: %.4f remaining, realized so far %.2f\n",
		pos.Qty, pos.PartialExits[0].RealizedPnL)

	pos, err = positions.Close(pos.ID, price+4, now.Add(2*time.Minute))
	if err != nil {
		return err
	}
	if err := j.RecordClose(journal.ClosedTrade{
		PositionID:  pos.ID,
		Symbol:      pos.Symbol,
		Side:        string(pos.Side),
		Quantity:    pos.InitialQty,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   pos.ExitPrice,
		OpenTime:    pos.OpenedAt,
		CloseTime:   pos.ClosedAt,
		RealizedPnL: pos.RealizedPnL,
		Fees:        pos.Fees,
		StrategyID:  pos.StrategyID,
	}); err != nil {
		return err
	}

	fmt.Printf("closed %s: realized %.2f (MFE %.2f%% / MAE %.2f%%)\n",
		pos.Symbol, pos.RealizedPnL, pos.MFE, pos.MAE)
	fmt.Printf("orders by status: %v\n", orders.CountByStatus())
	fmt.Printf("open positions: %d, total unrealized: %.2f\n",
		positions.CountOpen(), positions.TotalUnrealizedPnL())
	return nil
}
