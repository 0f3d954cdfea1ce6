package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"btc_backend/internal/app/di"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarketData(cmd, func(ctx context.Context, md *di.MarketData) error {
			md.Usecase.ClearCache(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "cache cleared (%s)\n", cfg.Cache.Backend)
			return nil
		})
	},
}

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Prefetch every endpoint into the cache",
	Long: `Warm fetches price and market data for each enabled source, the default
historical series, OHLCV for every servable timeframe and the global metrics.
Failures are logged and counted; the run continues past them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarketData(cmd, func(ctx context.Context, md *di.MarketData) error {
			r := md.Usecase.WarmCache(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "warmed %d entries, %d failed\n", r.Succeeded, r.Failed)
			if r.Succeeded == 0 && r.Failed > 0 {
				return fmt.Errorf("cache warm-up failed: %d errors", r.Failed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd, warmCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
