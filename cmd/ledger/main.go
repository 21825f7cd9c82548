package main

import (
	"os"

	"github.com/sihu-dev/qetta-sub001/cmd/ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
