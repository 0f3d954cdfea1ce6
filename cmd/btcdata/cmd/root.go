package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"btc_backend/internal/app/di"
	"btc_backend/internal/platform/config"
	"btc_backend/internal/platform/logging"
)

var (
	cfgFile  string
	logLevel string
	noCache  bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "btcdata",
	Short: "Fetch Bitcoin price, market and OHLCV data from CoinGecko and CoinMarketCap",
	Long: `btcdata fetches Bitcoin data from public price APIs and caches the results.

It provides commands for:
  - Current price in USD, EUR and GBP
  - Coin details and market data
  - Daily historical series (1 to 365 days)
  - OHLCV candles for the supported timeframes
  - Global cryptocurrency market metrics

Configuration is read from a YAML file (--config or BTC_CONFIG) and environment
variables such as COINMARKETCAP_API_KEY and BTC_CACHE_DIR.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		if noCache {
			c.Cache.Backend = config.BackendNone
		}
		l, err := logging.Setup(c.Log.Level, c.Log.Format)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("BTC_CONFIG"), "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the cache backend")
}

// withMarketData builds the facade for one command run and releases it afterwards.
func withMarketData(cmd *cobra.Command, fn func(ctx context.Context, md *di.MarketData) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	md, err := di.NewMarketData(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := md.Close(); err != nil {
			logger.Error("failed to close cache backend", "error", err)
		}
	}()
	return fn(ctx, md)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
