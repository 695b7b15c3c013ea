package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pourcost/backend/config"
	httpDelivery "github.com/pourcost/backend/internal/delivery/http"
	"github.com/pourcost/backend/internal/domain"
	"github.com/pourcost/backend/internal/infrastructure/cache"
	"github.com/pourcost/backend/internal/infrastructure/catalog"
	"github.com/pourcost/backend/internal/infrastructure/storage"
	applog "github.com/pourcost/backend/internal/log"
	"github.com/pourcost/backend/internal/observability"
	"github.com/pourcost/backend/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		applog.Error(context.Background(), "server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}

	applog.Info(ctx, "starting PourCost backend",
		"version", "1.0.0",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type,
		"database", cfg.Database.Driver)

	db, err := storage.Configure(storage.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return err
	}
	defer storage.Close(db)

	breakdownCache, closeCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	catalogStore := storage.NewCatalogStore(db)
	recipeStore := storage.NewRecipeStore(db)
	calculationStore := storage.NewCalculationStore(db)

	recipeService := usecase.NewRecipeService(recipeStore)
	productService := usecase.NewProductService(catalogStore, catalogStore, catalogStore, catalogStore)
	calculator := usecase.NewCostCalculator(
		recipeStore,
		catalogStore,
		catalogStore,
		calculationStore,
		breakdownCache,
		usecase.CostCalculatorConfig{
			Policy: usecase.CostPolicy{
				City:               cfg.Costing.City,
				MarkupPercent:      cfg.Costing.MarkupPercent,
				TierCandidateLimit: cfg.Costing.TierCandidateLimit,
			},
			BreakdownCacheTTL: cfg.Cache.TTL,
		},
	)

	var catalogService *usecase.CatalogService
	if cfg.Catalog.BaseURL != "" {
		client := catalog.NewClient(catalog.ClientConfig{
			BaseURL:           cfg.Catalog.BaseURL,
			APIKey:            cfg.Catalog.APIKey,
			Timeout:           cfg.Catalog.Timeout,
			RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
			MaxAttempts:       cfg.Catalog.MaxAttempts,
		})
		catalogService = usecase.NewCatalogService(client, catalogStore)
		applog.Info(ctx, "catalog feed configured", "base_url", cfg.Catalog.BaseURL)
	} else {
		applog.Warn(ctx, "catalog feed not configured; products must already be in the database")
	}

	if cfg.Server.SeedRecipes {
		if err := seedRecipes(ctx, recipeService); err != nil {
			return err
		}
	}

	if cfg.Catalog.SyncOnStartup && catalogService != nil {
		if _, err := catalogService.Sync(ctx); err != nil {
			applog.Warn(ctx, "startup catalog sync failed", "error", err)
		}
	}

	metrics := observability.NewMetrics()
	if sqlDB, err := db.DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB, cfg.Database.Driver); err != nil {
			applog.Warn(ctx, "database pool metrics unavailable", "error", err)
		}
	}
	handler := httpDelivery.NewHandler(httpDelivery.HandlerDeps{
		Recipes:       recipeService,
		Costs:         calculator,
		Catalog:       catalogService,
		Products:      productService,
		Metrics:       metrics,
		DefaultOption: domain.CostOption(cfg.Costing.DefaultOption),
	})
	router := httpDelivery.SetupRouter(cfg, handler, metrics)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		applog.Info(ctx, "server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("start server: %w", err)
	case <-ctx.Done():
	}

	applog.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newCache builds the breakdown cache named by the configuration
func newCache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, func(), error) {
	if cfg.Type == "redis" {
		addr := strings.TrimPrefix(cfg.RedisURL, "redis://")
		client, err := cache.NewRedisClient(ctx, addr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		redisCache := cache.NewRedisCache(client, cfg.KeyPrefix)
		return redisCache, func() { _ = redisCache.Close() }, nil
	}

	memoryCache := cache.NewMemoryCache(10 * time.Minute)
	return memoryCache, func() { _ = memoryCache.Close() }, nil
}

// seedRecipes stores a starter Old Fashioned when no recipes exist yet
func seedRecipes(ctx context.Context, recipes *usecase.RecipeService) error {
	existing, err := recipes.ListRecipes(ctx)
	if err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	recipe, err := recipes.CreateRecipe(ctx, domain.RecipeInput{
		Name:         "Old Fashioned",
		Category:     "Classic",
		Description:  "Bourbon stirred with sugar and bitters",
		Instructions: "Stir bourbon, syrup and bitters over ice. Strain over a large cube and express an orange peel.",
		Garnish:      "Orange peel",
		GlassType:    "Rocks",
		Difficulty:   "Easy",
		Source:       "seed",
		Ingredients: []domain.IngredientInput{
			{Name: "Bourbon Whiskey", Amount: 2, Unit: "oz", AlcoholCategory: "Spirits", AlcoholSubcategory: "Whisky", MinAlcoholPercentage: domain.Float(40)},
			{Name: "Simple Syrup", Type: domain.IngredientMixer, Amount: 0.25, Unit: "oz"},
			{Name: "Angostura Bitters", Type: domain.IngredientMixer, Amount: 2, Unit: "dash"},
			{Name: "Orange Peel", Type: domain.IngredientGarnish, Amount: 1, Unit: "piece"},
		},
	})
	if err != nil {
		return fmt.Errorf("seed recipe: %w", err)
	}
	applog.Info(ctx, "seeded starter recipe", "recipe_id", recipe.ID)
	return nil
}
