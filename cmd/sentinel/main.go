// Command sentinel monitors configured trading pairs, derives technical
// indicators from rolling price history, raises threshold alerts and submits
// risk-bounded orders with attached stop-loss/take-profit levels.
//
// Usage:
//
//	sentinel --config config.yaml
//
// Required environment variables:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crypto-market-sentinel/config"
	"crypto-market-sentinel/internal"
	"crypto-market-sentinel/internal/clients"
	"crypto-market-sentinel/internal/storage"
	"crypto-market-sentinel/internal/storage/journal"
	"crypto-market-sentinel/pkg/retrier"
)

const simulatedCapital = 10000

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	if cfg.Monitoring.Debug {
		logger, _ = zap.NewDevelopment()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, venue, err := buildCollaborators(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	jrnl, err := journal.New(journal.DefaultDir)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	sentinel, err := internal.NewSentinel(cfg, store, venue, jrnl, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	if err := sentinel.Run(ctx); err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sentinel.Shutdown(shutdownCtx)
}

func buildCollaborators(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, internal.Venue, error) {
	var venue internal.Venue
	switch cfg.Platform {
	case "binance":
		apiKey, apiSecret := os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			logger.Fatal("BINANCE_API_KEY and BINANCE_API_SECRET environment variables must be set")
		}
		venue = clients.NewBinanceClient(apiKey, apiSecret)
	case "bybit":
		apiKey, apiSecret := os.Getenv("BYBIT_API_KEY"), os.Getenv("BYBIT_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			logger.Fatal("BYBIT_API_KEY and BYBIT_API_SECRET environment variables must be set")
		}
		venue = clients.NewBybitClient(apiKey, apiSecret)
	case "simulate":
		venue = clients.NewSimulateClient(decimal.NewFromInt(simulatedCapital), logger)
	}

	if cfg.Platform == "simulate" {
		return storage.NewMemoryStore(), venue, nil
	}

	// Redis may come up slower than the sentinel; probe with backoff before
	// declaring startup failed.
	var store *storage.RedisStore
	err := retrier.New(retrier.WithMaxRetries(5)).Do(ctx, func(ctx context.Context) error {
		var err error
		store, err = storage.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return store, venue, nil
}
