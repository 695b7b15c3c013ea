package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pourcost/backend/internal/domain"
	applog "github.com/pourcost/backend/internal/log"
	"github.com/pourcost/backend/internal/observability"
	"github.com/pourcost/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recipes       *usecase.RecipeService
	costs         *usecase.CostCalculator
	catalog       *usecase.CatalogService
	products      *usecase.ProductService
	metrics       *observability.Metrics
	defaultOption domain.CostOption
}

// HandlerDeps groups the services served over HTTP. Catalog and Metrics may
// be nil.
type HandlerDeps struct {
	Recipes       *usecase.RecipeService
	Costs         *usecase.CostCalculator
	Catalog       *usecase.CatalogService
	Products      *usecase.ProductService
	Metrics       *observability.Metrics
	DefaultOption domain.CostOption
}

// NewHandler creates a new HTTP handler
func NewHandler(deps HandlerDeps) *Handler {
	option := deps.DefaultOption
	if option == "" {
		option = domain.DefaultCostOption
	}
	return &Handler{
		recipes:       deps.Recipes,
		costs:         deps.Costs,
		catalog:       deps.Catalog,
		products:      deps.Products,
		metrics:       deps.Metrics,
		defaultOption: option,
	}
}

// CompareRequest is the body of POST /recipes/compare
type CompareRequest struct {
	RecipeIDs []uint `json:"recipeIds" binding:"required,min=1"`
	Option    string `json:"option"`
}

// StoreRequest is the body of PUT /stores/:id
type StoreRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Province string `json:"province"`
	IsActive *bool  `json:"isActive"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pourcost-backend",
		"version": "1.0.0",
	})
}

// CreateRecipe handles POST /recipes
func (h *Handler) CreateRecipe(c *gin.Context) {
	var input domain.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// ListRecipes handles GET /recipes with an optional ?q= name filter
func (h *Handler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.SearchRecipes(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddIngredient(c *gin.Context) {
	recipeID, ok := parseID(c)
	if !ok {
		return
	}

	var input domain.IngredientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ingredient, err := h.recipes.AddIngredient(c.Request.Context(), recipeID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *Handler) UpdateIngredient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input domain.IngredientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ingredient, err := h.recipes.UpdateIngredient(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *Handler) RemoveIngredient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.recipes.RemoveIngredient(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CalculateCost handles POST /recipes/:id/cost?option=
func (h *Handler) CalculateCost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	option, err := h.parseOption(c.Query("option"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	calc, err := h.costs.CalculateCost(c.Request.Context(), id, option)
	if err != nil {
		h.metrics.ObserveCalculation(string(option), 0, err)
		h.respondError(c, err)
		return
	}
	h.metrics.ObserveCalculation(string(option), calc.TotalCost, nil)
	c.JSON(http.StatusCreated, calc)
}

// GetCostBreakdown handles GET /calculations/:id/breakdown
func (h *Handler) GetCostBreakdown(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	breakdown, err := h.costs.GetCostBreakdown(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// CompareRecipes handles POST /recipes/compare
func (h *Handler) CompareRecipes(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	option, err := h.parseOption(req.Option)
	if err != nil {
		h.respondError(c, err)
		return
	}

	rows, err := h.costs.CompareRecipes(c.Request.Context(), req.RecipeIDs, option)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"option": option, "comparisons": rows})
}

// IngredientMatches handles GET /ingredients/:id/matches?limit=
func (h *Handler) IngredientMatches(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	report, err := h.costs.IngredientMatches(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SyncCatalog handles POST /catalog/sync
func (h *Handler) SyncCatalog(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Catalog feed not configured",
		})
		return
	}

	result, err := h.catalog.Sync(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.ObserveCatalogSync(result.Upserted, result.Unchanged, result.Skipped, result.Failed)
	c.JSON(http.StatusOK, result)
}

// MixerCosts handles GET /mixers, the price list used for non-alcoholic
// ingredients in match order
func (h *Handler) MixerCosts(c *gin.Context) {
	policy := h.costs.Policy()
	c.JSON(http.StatusOK, gin.H{
		"mixers": policy.Mixers.Entries(),
		"store":  usecase.MixerStore,
	})
}

// SearchProducts handles GET /products?q=&category=
func (h *Handler) SearchProducts(c *gin.Context) {
	products, err := h.products.SearchProducts(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// ProductAvailability handles GET /products/:id/availability?city=. Without
// a city parameter the costing city is used; an empty value means every store.
func (h *Handler) ProductAvailability(c *gin.Context) {
	city, ok := c.GetQuery("city")
	if !ok {
		city = h.costs.Policy().City
	}

	report, err := h.products.Availability(c.Request.Context(), c.Param("id"), city)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PriceHistory handles GET /products/:id/price-history?days=
func (h *Handler) PriceHistory(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	report, err := h.products.PriceHistory(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RegisterStore handles PUT /stores/:id
func (h *Handler) RegisterStore(c *gin.Context) {
	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	store, err := h.products.RegisterStore(c.Request.Context(), domain.Store{
		StoreID:  c.Param("id"),
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		Province: req.Province,
		IsActive: active,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *Handler) parseOption(raw string) (domain.CostOption, error) {
	if raw == "" {
		return h.defaultOption, nil
	}
	return domain.ParseCostOption(raw)
}

// respondError maps domain errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		applog.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrCalculationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidCostOption),
		errors.Is(err, domain.ErrNoIngredients):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCatalogFeedFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}
