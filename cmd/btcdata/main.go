package main

import (
	"os"

	"btc_backend/cmd/btcdata/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
