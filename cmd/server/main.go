package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"btc_backend/internal/app/di"
	"btc_backend/internal/app/router"
	"btc_backend/internal/platform/config"
	"btc_backend/internal/platform/logging"
)

// ビルド時に -ldflags "-X main.version=..." で上書きする
var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("BTC_CONFIG"), "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// 設定
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// ロガー
	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Provider / Cache / Usecase / Handler
	md, err := di.NewMarketData(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := md.Close(); err != nil {
			logger.Error("failed to close cache backend", "error", err)
		}
	}()

	// ルータ生成
	gin.SetMode(gin.ReleaseMode)
	r := router.NewRouter(router.Options{
		Version: version,
		CORS:    cfg.Server.CORS,
		Logger:  logger,
		Checks:  md.Cache.Checks,
	}, md.Handler, md.Metrics)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "address", cfg.Server.Address, "cache_backend", cfg.Cache.Backend, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
