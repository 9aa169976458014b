// Command pricebot runs the daily price cache refresh, either once (-once)
// or on a loop that fires at the configured local hour every day.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/thucdon/backend/config"
	"github.com/thucdon/backend/internal/database"
	"github.com/thucdon/backend/internal/pricing"
)

func main() {
	once := flag.Bool("once", false, "run a single refresh and exit")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("redis unavailable, price lookups will not be cached", zap.Error(err))
		redisClient = nil
	}

	var sources []pricing.PriceSource
	sources = append(sources, pricing.NewMarketScraper(cfg.MarketBaseURL, redisClient, logger))
	if cfg.DeepSeekAPIKey != "" {
		estimator, err := pricing.NewAIEstimator(cfg.DeepSeekAPIKey, cfg.DeepSeekAPIURL, redisClient, logger)
		if err != nil {
			logger.Warn("AI price estimator disabled", zap.Error(err))
		} else {
			sources = append(sources, estimator)
		}
	}

	refresher := pricing.NewRefresher(db, sources, logger,
		pricing.WithLookupDelay(time.Duration(cfg.PriceLookupDelayMS)*time.Millisecond),
		pricing.WithLookupTimeout(time.Duration(cfg.PriceLookupTimeout)*time.Second),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := runRefresh(ctx, refresher, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	logger.Info("scheduling daily price refresh", zap.Int("hour", cfg.RefreshHour))
	for {
		select {
		case <-ctx.Done():
			logger.Info("pricebot stopped")
			return
		case <-time.After(untilNextRun(time.Now(), cfg.RefreshHour)):
			// Keep the loop alive on transient failures; the next day's
			// run re-verifies everything anyway.
			_ = runRefresh(ctx, refresher, logger)
		}
	}
}

func runRefresh(ctx context.Context, refresher *pricing.Refresher, logger *zap.Logger) error {
	result, err := refresher.RefreshAll(ctx)
	if err != nil {
		logger.Error("price refresh failed", zap.Error(err))
		return err
	}
	logger.Info("price refresh done",
		zap.Int("updated", result.Updated),
		zap.Int("stamped", result.Stamped))
	return nil
}

// untilNextRun returns the wait until the next occurrence of hour o'clock
// local time, at least one minute away so back-to-back fires can't happen.
func untilNextRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if d := next.Sub(now); d > time.Minute {
		return d
	}
	return next.AddDate(0, 0, 1).Sub(now)
}
