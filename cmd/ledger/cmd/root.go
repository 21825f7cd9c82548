package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Order and position accounting core",
	Long: `Ledger is the order and position accounting core.

It provides tools for:
  - Recording orders and applying executions to them
  - Tracking open and closed positions with mark-to-market
  - Risk-based position sizing (fixed, percent-risk, half-Kelly, ATR)
  - Pre-trade order validation against configured limits
  - Journaling closed trades and fills to sqlite or CSV`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	// A .env file is optional; environment overrides come from config.
	_ = godotenv.Load()
	return rootCmd.Execute()
}
