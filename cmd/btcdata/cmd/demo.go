package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"btc_backend/internal/app/di"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a walkthrough of every data call",
	Long: `Demo runs the common calls in order and prints a short summary of each:

  1. Current price
  2. Market data
  3. 30-day historical series
  4. 1d OHLCV candles
  5. Supported timeframes

Failures are reported and the walkthrough continues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarketData(cmd, runDemo(cmd))
	},
}

func runDemo(cmd *cobra.Command) func(ctx context.Context, md *di.MarketData) error {
	return func(ctx context.Context, md *di.MarketData) error {
		w := cmd.OutOrStdout()
		uc := md.Usecase

		fmt.Fprintln(w, "Getting current Bitcoin price...")
		if price, err := uc.GetPrice(ctx, ""); err != nil {
			fmt.Fprintf(w, "Failed to get price: %v\n", err)
		} else {
			fmt.Fprint(w, "Price data: ")
			if err := printJSON(w, price); err != nil {
				return err
			}
		}

		fmt.Fprintln(w, "\nGetting market data...")
		if market, err := uc.GetMarketData(ctx, ""); err != nil {
			fmt.Fprintf(w, "Failed to get market data: %v\n", err)
		} else {
			fmt.Fprintf(w, "Market data retrieved at %s\n", market.Timestamp.Format(time.RFC3339))
		}

		fmt.Fprintln(w, "\nGetting 30-day historical data...")
		if hist, err := uc.GetHistoricalData(ctx, 30, ""); err != nil {
			fmt.Fprintf(w, "Failed to get historical data: %v\n", err)
		} else {
			fmt.Fprintf(w, "Historical data points: %d\n", len(hist.Body.Prices))
		}

		fmt.Fprintln(w, "\nGetting OHLCV data for 1d timeframe...")
		if ohlcv, err := uc.GetOHLCV(ctx, "1d"); err != nil {
			fmt.Fprintf(w, "Failed to get OHLCV data: %v\n", err)
		} else {
			fmt.Fprintf(w, "OHLCV candles: %d\n", len(ohlcv.Body.Candles))
		}

		fmt.Fprintf(w, "\nSupported timeframes: %v\n", uc.ListSupportedTimeframes())
		return nil
	}
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
