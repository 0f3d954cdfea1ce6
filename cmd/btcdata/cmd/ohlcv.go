package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"btc_backend/internal/app/di"
	"btc_backend/internal/feature/marketdata/domain/timeframe"
	"btc_backend/internal/feature/marketdata/transport/http/dto"
)

var ohlcvCmd = &cobra.Command{
	Use:   "ohlcv <timeframe>",
	Short: "Print OHLCV candles for a timeframe",
	Long: fmt.Sprintf(`OHLCV builds candles from CoinGecko series.

Timeframes: %s
1m is recognized but cannot be served by the free endpoints.

Example:
  btcdata ohlcv 4h`, strings.Join(timeframe.Labels(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarketData(cmd, func(ctx context.Context, md *di.MarketData) error {
			out, err := md.Usecase.GetOHLCV(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dto.NewOHLCVResponse(out))
		})
	},
}

var timeframesCmd = &cobra.Command{
	Use:   "timeframes",
	Short: "List the timeframe labels",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range timeframe.Labels() {
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}
	},
}

func init() {
	rootCmd.AddCommand(ohlcvCmd, timeframesCmd)
}
