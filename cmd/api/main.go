package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/thucdon/backend/config"
	"github.com/thucdon/backend/internal/api"
	"github.com/thucdon/backend/internal/database"
	"github.com/thucdon/backend/internal/pricing"
	"github.com/thucdon/backend/internal/router"
	"github.com/thucdon/backend/internal/server"
	"github.com/thucdon/backend/internal/service"
)

func main() {
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
		// The price pipeline degrades to uncached lookups without Redis.
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

	recipes := service.NewRecipeService(db)
	prefs := service.NewPreferenceService(db)
	mealPlans := service.NewMealPlanService(db, recipes)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	menu := service.NewMenuService(recipes, mealPlans, prefs, rng, logger)
	lists := service.NewShoppingListService(db, mealPlans, refresher, logger)

	engine := router.Setup(
		cfg.JWTSecret,
		api.NewMenuHandler(menu),
		api.NewMealPlanHandler(mealPlans),
		api.NewShoppingListHandler(lists),
		api.NewAdminHandler(refresher),
	)
	srv := server.New(cfg.ServerHost, cfg.ServerPort, engine)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.ServerHost+":"+cfg.ServerPort))
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
