package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pourcost/backend/config"
	"github.com/pourcost/backend/internal/observability"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, metrics *observability.Metrics) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(metrics.Middleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		recipes := v1.Group("/recipes")
		{
			recipes.POST("", handler.CreateRecipe)
			recipes.GET("", handler.ListRecipes)
			recipes.POST("/compare", handler.CompareRecipes)
			recipes.GET("/:id", handler.GetRecipe)
			recipes.DELETE("/:id", handler.DeleteRecipe)
			recipes.POST("/:id/ingredients", handler.AddIngredient)
			recipes.POST("/:id/cost", handler.CalculateCost)
		}

		ingredients := v1.Group("/ingredients")
		{
			ingredients.PUT("/:id", handler.UpdateIngredient)
			ingredients.DELETE("/:id", handler.RemoveIngredient)
			ingredients.GET("/:id/matches", handler.IngredientMatches)
		}

		products := v1.Group("/products")
		{
			products.GET("", handler.SearchProducts)
			products.GET("/:id/availability", handler.ProductAvailability)
			products.GET("/:id/price-history", handler.PriceHistory)
		}

		v1.GET("/mixers", handler.MixerCosts)
		v1.PUT("/stores/:id", handler.RegisterStore)
		v1.GET("/calculations/:id/breakdown", handler.GetCostBreakdown)
		v1.POST("/catalog/sync", handler.SyncCatalog)
	}

	return router
}
