package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pourcost/backend/internal/domain"
	applog "github.com/pourcost/backend/internal/log"
)

// Costing defaults
const (
	DefaultMarkupPercent     = 300.0
	DefaultCity              = "St. Catharines"
	defaultBreakdownCacheTTL = 24 * time.Hour
	defaultMatchLimit        = 10
	mixerVolumeML            = 1000.0
	mixerBrand               = "Generic"
)

// CostPolicy holds the pricing knobs of a calculation. It is passed by value
// and never mutated by the calculator.
type CostPolicy struct {
	City               string
	MarkupPercent      float64
	Mixers             *MixerCostTable
	TierCandidateLimit int
}

// DefaultCostPolicy returns the policy used when none is configured
func DefaultCostPolicy() CostPolicy {
	return CostPolicy{
		City:               DefaultCity,
		MarkupPercent:      DefaultMarkupPercent,
		Mixers:             DefaultMixerCostTable(),
		TierCandidateLimit: defaultTierCandidateLimit,
	}
}

func (p CostPolicy) withDefaults() CostPolicy {
	if p.City == "" {
		p.City = DefaultCity
	}
	if p.MarkupPercent <= 0 {
		p.MarkupPercent = DefaultMarkupPercent
	}
	if p.Mixers == nil {
		p.Mixers = DefaultMixerCostTable()
	}
	if p.TierCandidateLimit <= 0 {
		p.TierCandidateLimit = defaultTierCandidateLimit
	}
	return p
}

// CostCalculatorConfig holds configuration for the cost calculator
type CostCalculatorConfig struct {
	Policy            CostPolicy
	BreakdownCacheTTL time.Duration
}

// CostCalculator prices recipes against the product catalog
type CostCalculator struct {
	recipes      domain.RecipeRepository
	catalog      domain.ProductCatalog
	availability domain.AvailabilityLookup
	calculations domain.CalculationRepository
	cache        domain.CacheRepository
	policy       CostPolicy
	cacheTTL     time.Duration
	now          func() time.Time
}

// NewCostCalculator creates a calculator with its collaborators
func NewCostCalculator(
	recipes domain.RecipeRepository,
	catalog domain.ProductCatalog,
	availability domain.AvailabilityLookup,
	calculations domain.CalculationRepository,
	cache domain.CacheRepository,
	config CostCalculatorConfig,
) *CostCalculator {
	cacheTTL := config.BreakdownCacheTTL
	if cacheTTL == 0 {
		cacheTTL = defaultBreakdownCacheTTL
	}

	return &CostCalculator{
		recipes:      recipes,
		catalog:      catalog,
		availability: availability,
		calculations: calculations,
		cache:        cache,
		policy:       config.Policy.withDefaults(),
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

// Policy returns the calculator's configured policy
func (c *CostCalculator) Policy() CostPolicy {
	return c.policy
}

// CalculateCost costs a recipe with the configured policy.
func (c *CostCalculator) CalculateCost(
	ctx context.Context,
	recipeID uint,
	option domain.CostOption,
) (*domain.DrinkCostCalculation, error) {
	return c.CalculateCostWithPolicy(ctx, recipeID, option, c.policy)
}

// CalculateCostWithPolicy costs a recipe and persists the snapshot.
// Flow: load recipe -> snapshot catalog -> cost at option -> rerun cheapest
// and premium -> availability -> save.
func (c *CostCalculator) CalculateCostWithPolicy(
	ctx context.Context,
	recipeID uint,
	option domain.CostOption,
	policy CostPolicy,
) (*domain.DrinkCostCalculation, error) {
	if option == "" {
		option = domain.DefaultCostOption
	}
	if _, err := domain.ParseCostOption(string(option)); err != nil {
		return nil, err
	}
	policy = policy.withDefaults()

	recipe, err := c.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if len(recipe.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: recipe %d", domain.ErrNoIngredients, recipeID)
	}

	products, err := c.catalog.ListActiveProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	matcher := NewProductMatcher(MatchConfig{TierCandidateLimit: policy.TierCandidateLimit})

	ingredients := withAmountsML(recipe.Ingredients)
	current := c.costIngredients(ctx, ingredients, products, option, policy, matcher, true)
	lowest := c.costIngredients(ctx, ingredients, products, domain.CostCheapest, policy, matcher, false)
	premium := c.costIngredients(ctx, ingredients, products, domain.CostPremium, policy, matcher, false)

	totalCost := current.alcoholTotal + current.mixerTotal
	costPerML := 0.0
	if recipe.ServingSizeML > 0 {
		costPerML = totalCost / recipe.ServingSizeML
	}

	calc := &domain.DrinkCostCalculation{
		RecipeID:                recipe.ID,
		RecipeName:              recipe.Name,
		CostOption:              option,
		City:                    policy.City,
		CalculatedAt:            c.now(),
		TotalAlcoholCost:        current.alcoholTotal,
		TotalMixerCost:          current.mixerTotal,
		TotalCost:               totalCost,
		CostPerML:               costPerML,
		MarkupSuggested:         policy.MarkupPercent,
		SuggestedSellingPrice:   totalCost * (1 + policy.MarkupPercent/100),
		LowestCostOption:        lowest.alcoholTotal + lowest.mixerTotal,
		PremiumCostOption:       premium.alcoholTotal + premium.mixerTotal,
		AllIngredientsAvailable: len(current.missing) == 0,
		MissingIngredients:      current.missing,
		IngredientsOnSale:       current.onSale,
		TotalSaleSavings:        current.saleSavings,
		IngredientCosts:         current.costs,
	}

	if err := c.calculations.SaveCalculation(ctx, calc); err != nil {
		return nil, fmt.Errorf("save calculation: %w", err)
	}

	applog.Info(ctx, "calculated recipe cost",
		"recipe_id", recipe.ID,
		"calculation_id", calc.ID,
		"option", option,
		"total_cost", calc.TotalCost,
		"missing", len(calc.MissingIngredients))

	return calc, nil
}

// withAmountsML returns a copy of ingredients with AmountML filled in for
// rows stored without it, so each unit is converted once per calculation.
func withAmountsML(ingredients []domain.RecipeIngredient) []domain.RecipeIngredient {
	out := make([]domain.RecipeIngredient, len(ingredients))
	copy(out, ingredients)
	for i := range out {
		if out[i].AmountML == 0 {
			out[i].AmountML = ToML(out[i].Amount, out[i].Unit)
		}
	}
	return out
}

// costRun is the result of pricing every ingredient at one cost option
type costRun struct {
	costs        []domain.IngredientCost
	alcoholTotal float64
	mixerTotal   float64
	missing      []string
	onSale       []domain.SaleItem
	saleSavings  float64
}

// costIngredients prices ingredients against a catalog snapshot. AmountML
// must already be set on every ingredient. Store
// availability is only looked up when withAvailability is set; the cheapest
// and premium reruns only need totals.
func (c *CostCalculator) costIngredients(
	ctx context.Context,
	ingredients []domain.RecipeIngredient,
	products []domain.Product,
	option domain.CostOption,
	policy CostPolicy,
	matcher *ProductMatcher,
	withAvailability bool,
) costRun {
	run := costRun{
		costs:   []domain.IngredientCost{},
		missing: []string{},
		onSale:  []domain.SaleItem{},
	}

	for _, ingredient := range ingredients {
		amountML := ingredient.AmountML

		if ingredient.Type != domain.IngredientAlcohol {
			cost := mixerCost(ingredient, amountML, policy.Mixers)
			run.mixerTotal += cost.Cost
			run.costs = append(run.costs, cost)
			continue
		}

		product := resolveProduct(matcher, ingredient, products, option)
		if product == nil {
			run.missing = append(run.missing, ingredient.Name)
			continue
		}

		pricePerML, _ := product.PricePerML()
		cost := domain.IngredientCost{
			RecipeIngredientID: ingredient.ID,
			IngredientName:     ingredient.Name,
			ProductID:          product.ID,
			ProductName:        product.Name,
			Brand:              product.Brand,
			ProductPrice:       *product.Price,
			ProductVolumeML:    *product.VolumeML,
			PricePerML:         pricePerML,
			RegularPrice:       product.RegularPrice,
			AmountNeededML:     amountML,
			Cost:               pricePerML * amountML,
			StoresAvailable:    []string{},
			IsCheapestOption:   option == domain.CostCheapest,
			IsPremiumOption:    option == domain.CostPremium,
			AlternativeRank:    1,
		}

		if product.RegularPrice != nil && *product.RegularPrice > *product.Price {
			regularPerML := *product.RegularPrice / *product.VolumeML
			cost.IsOnSale = true
			cost.SaleSavings = (regularPerML - pricePerML) * amountML
			run.saleSavings += cost.SaleSavings
			run.onSale = append(run.onSale, domain.SaleItem{
				Ingredient: ingredient.Name,
				Product:    product.Name,
				Savings:    cost.SaleSavings,
			})
		}

		if withAvailability {
			cost.InStock, cost.StoresAvailable = c.lookupAvailability(ctx, product.ID, policy.City)
		}

		run.alcoholTotal += cost.Cost
		run.costs = append(run.costs, cost)
	}

	return run
}

// resolveProduct picks the product for an alcohol ingredient at option
func resolveProduct(
	matcher *ProductMatcher,
	ingredient domain.RecipeIngredient,
	products []domain.Product,
	option domain.CostOption,
) *domain.Product {
	if option == domain.CostBestMatch {
		return matcher.FindBestMatch(ingredient, products)
	}
	return matcher.FindPriceRangeOptions(ingredient, products).For(option)
}

// mixerCost prices a non-alcoholic ingredient from the mixer table
func mixerCost(ingredient domain.RecipeIngredient, amountML float64, mixers *MixerCostTable) domain.IngredientCost {
	perML := mixers.CostPerML(ingredient.Name)
	return domain.IngredientCost{
		RecipeIngredientID: ingredient.ID,
		IngredientName:     ingredient.Name,
		ProductID:          domain.MixerProductID,
		ProductName:        ingredient.Name,
		Brand:              mixerBrand,
		ProductPrice:       perML * mixerVolumeML,
		ProductVolumeML:    mixerVolumeML,
		PricePerML:         perML,
		AmountNeededML:     amountML,
		Cost:               perML * amountML,
		InStock:            true,
		StoresAvailable:    []string{MixerStore},
		IsCheapestOption:   true,
		AlternativeRank:    1,
	}
}

// lookupAvailability reports whether any store in city stocks the product.
// Lookup failures are treated as unknown stock, not as errors.
func (c *CostCalculator) lookupAvailability(ctx context.Context, productID, city string) (bool, []string) {
	stores := []string{}
	if c.availability == nil {
		return false, stores
	}

	lines, err := c.availability.ProductAvailability(ctx, productID, city)
	if err != nil {
		applog.Debug(ctx, "availability lookup failed", "product_id", productID, "error", err)
		return false, stores
	}

	for _, line := range lines {
		if line.InStock {
			stores = append(stores, line.StoreName)
		}
	}
	return len(stores) > 0, stores
}

// GetCostBreakdown renders a stored calculation as an ingredient-level
// report. Calculations are immutable, so the report is cached without
// invalidation.
func (c *CostCalculator) GetCostBreakdown(ctx context.Context, calculationID uint) (*domain.CostBreakdown, error) {
	cacheKey := breakdownCacheKey(calculationID)

	if cached, err := c.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		return cached, nil
	}

	calc, err := c.calculations.GetCalculation(ctx, calculationID)
	if err != nil {
		return nil, err
	}

	breakdown := BuildCostBreakdown(calc)

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, breakdown, c.cacheTTL); err != nil {
			applog.Warn(ctx, "failed to cache cost breakdown", "calculation_id", calculationID, "error", err)
		}
	}

	return breakdown, nil
}

// BuildCostBreakdown formats a calculation for display
func BuildCostBreakdown(calc *domain.DrinkCostCalculation) *domain.CostBreakdown {
	breakdown := &domain.CostBreakdown{
		CalculationID:    calc.ID,
		RecipeName:       calc.RecipeName,
		TotalCost:        calc.TotalCost,
		CostPerML:        calc.CostPerML,
		SuggestedPrice:   calc.SuggestedSellingPrice,
		MarkupPercentage: calc.MarkupSuggested,
		Ingredients:      make([]domain.BreakdownIngredient, 0, len(calc.IngredientCosts)),
		Availability: domain.BreakdownAvailability{
			AllAvailable: calc.AllIngredientsAvailable,
			Missing:      nonNilStrings(calc.MissingIngredients),
			OnSale:       calc.IngredientsOnSale,
			TotalSavings: calc.TotalSaleSavings,
		},
		CostOptions: domain.BreakdownCostOptions{
			Cheapest: calc.LowestCostOption,
			Current:  calc.TotalCost,
			Premium:  calc.PremiumCostOption,
		},
	}
	if breakdown.Availability.OnSale == nil {
		breakdown.Availability.OnSale = []domain.SaleItem{}
	}

	for _, cost := range calc.IngredientCosts {
		line := domain.BreakdownIngredient{
			Name:         cost.ProductName,
			Brand:        cost.Brand,
			AmountNeeded: fmt.Sprintf("%.1fml", cost.AmountNeededML),
			Cost:         fmt.Sprintf("$%.3f", cost.Cost),
			PricePerML:   fmt.Sprintf("$%.4f", cost.PricePerML),
			BottlePrice:  "N/A",
			BottleSize:   fmt.Sprintf("%.0fml", cost.ProductVolumeML),
			InStock:      cost.InStock,
			OnSale:       cost.IsOnSale,
		}
		if cost.ProductPrice > 0 {
			line.BottlePrice = fmt.Sprintf("$%.2f", cost.ProductPrice)
		}
		if cost.SaleSavings > 0 {
			savings := fmt.Sprintf("$%.3f", cost.SaleSavings)
			line.SaleSavings = &savings
		}
		breakdown.Ingredients = append(breakdown.Ingredients, line)
	}

	return breakdown
}

// CompareRecipes costs each recipe at option and ranks them by total cost,
// cheapest first. Recipes that cannot be costed are skipped.
func (c *CostCalculator) CompareRecipes(
	ctx context.Context,
	recipeIDs []uint,
	option domain.CostOption,
) ([]domain.RecipeComparison, error) {
	if len(recipeIDs) == 0 {
		return nil, fmt.Errorf("%w: no recipe ids", domain.ErrInvalidRequest)
	}

	rows := make([]domain.RecipeComparison, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		calc, err := c.CalculateCost(ctx, id, option)
		if err != nil {
			if errors.Is(err, domain.ErrRecipeNotFound) || errors.Is(err, domain.ErrNoIngredients) {
				applog.Warn(ctx, "skipping recipe in comparison", "recipe_id", id, "error", err)
				continue
			}
			return nil, err
		}

		rows = append(rows, domain.RecipeComparison{
			RecipeID:       calc.RecipeID,
			RecipeName:     calc.RecipeName,
			CalculationID:  calc.ID,
			TotalCost:      calc.TotalCost,
			CostPerML:      calc.CostPerML,
			SuggestedPrice: calc.SuggestedSellingPrice,
			ProfitMargin:   calc.SuggestedSellingPrice - calc.TotalCost,
			AllAvailable:   calc.AllIngredientsAvailable,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalCost < rows[j].TotalCost
	})

	return rows, nil
}

// IngredientMatches ranks catalog products for one stored ingredient
func (c *CostCalculator) IngredientMatches(
	ctx context.Context,
	ingredientID uint,
	limit int,
) (*domain.IngredientMatches, error) {
	ingredient, err := c.recipes.GetIngredient(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMatchLimit
	}

	categories := CategoriesFor(*ingredient)
	products, err := c.catalog.ListActiveProducts(ctx, domain.ProductFilter{Categories: categories})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	matcher := NewProductMatcher(MatchConfig{TierCandidateLimit: c.policy.TierCandidateLimit})
	report := &domain.IngredientMatches{
		Ingredient: *ingredient,
		Categories: categories,
		Candidates: matcher.FindMatchingProducts(*ingredient, products, limit),
		BestMatch:  matcher.FindBestMatch(*ingredient, products),
		Tiers:      matcher.FindPriceRangeOptions(*ingredient, products),
	}
	if report.Candidates == nil {
		report.Candidates = []domain.MatchCandidate{}
	}
	if report.BestMatch != nil {
		verification := matcher.VerifyMatch(*ingredient, *report.BestMatch)
		report.Verification = &verification
	}

	return report, nil
}

func breakdownCacheKey(calculationID uint) string {
	return fmt.Sprintf("breakdown:%d", calculationID)
}

// getFromCache retrieves a breakdown from cache. Backends that serialise
// values hand back JSON-shaped data, which is decoded again here.
func (c *CostCalculator) getFromCache(ctx context.Context, key string) (*domain.CostBreakdown, error) {
	if c.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var raw []byte
	switch v := value.(type) {
	case *domain.CostBreakdown:
		return v, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		raw, err = json.Marshal(v)
		if err != nil {
			return nil, domain.ErrCacheMiss
		}
	}

	var breakdown domain.CostBreakdown
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &breakdown, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
