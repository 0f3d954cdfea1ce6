package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"btc_backend/internal/app/di"
	"btc_backend/internal/feature/marketdata/usecase"
)

var (
	sourceName string
	histDays   int
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Print the current BTC price in USD, EUR and GBP",
	Long: `Price fetches the latest BTC quotes from the selected source.

Example:
  btcdata price --source coinmarketcap`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarketData(cmd, func(ctx context.Context, md *di.MarketData) error {
			out, err := md.Usecase.GetPrice(ctx, sourceName)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Print coin details and market data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarketData(cmd, func(ctx context.Context, md *di.MarketData) error {
			out, err := md.Usecase.GetMarketData(ctx, sourceName)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

var historicalCmd = &cobra.Command{
	Use:   "historical",
	Short: "Print the daily historical series",
	Long: `Historical fetches daily price, market cap and volume series.
Days outside 1..365 are clamped. Only CoinGecko serves historical data.

Example:
  btcdata historical --days 30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarketData(cmd, func(ctx context.Context, md *di.MarketData) error {
			out, err := md.Usecase.GetHistoricalData(ctx, histDays, sourceName)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "Print global cryptocurrency market metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarketData(cmd, func(ctx context.Context, md *di.MarketData) error {
			out, err := md.Usecase.GetGlobalMetrics(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

func init() {
	rootCmd.AddCommand(priceCmd, marketCmd, historicalCmd, globalCmd)

	for _, c := range []*cobra.Command{priceCmd, marketCmd, historicalCmd} {
		c.Flags().StringVarP(&sourceName, "source", "s", "coingecko", "data source (coingecko, coinmarketcap)")
	}
	historicalCmd.Flags().IntVarP(&histDays, "days", "d", usecase.DefaultHistoricalDays, "number of days (1-365)")
}
