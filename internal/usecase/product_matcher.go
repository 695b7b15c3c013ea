package usecase

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pourcost/backend/internal/domain"
	applog "github.com/pourcost/backend/internal/log"
)

// Package-level compiled regex pattern for performance
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Scoring bonuses and penalties
const (
	exactNameBonus       = 100.0 // Ingredient name equals product name
	brandPreferenceBonus = 50.0  // Preferred brand appears in product brand or name
	brandKeywordBonus    = 40.0  // Known brand named in ingredient and present on product
	alcoholTypeBonus     = 30.0  // Alcohol type keyword present on product
	categoryBonus        = 20.0
	subcategoryBonus     = 15.0
	abvSufficientBonus   = 10.0
	abvTooLowPenalty     = -20.0
	keywordWordBonus     = 5.0 // Per ingredient word found in product name
	sweetSpotPriceBonus  = 5.0
	expensivePenalty     = -10.0
	standardBottleBonus  = 3.0
)

// Price heuristics, in catalog currency units
const (
	sweetSpotMinPrice = 20.0
	sweetSpotMaxPrice = 80.0
	expensivePrice    = 150.0
	minKeywordRunes   = 3
)

// defaultTierCandidateLimit is how many top-scored candidates feed tier selection
const defaultTierCandidateLimit = 20

// standardBottleSizes are common retail bottle volumes in ml
var standardBottleSizes = []float64{375, 500, 750, 1000, 1140}

// alcoholType maps an ingredient keyword to catalog categories and the
// keywords expected on matching products.
type alcoholType struct {
	name          string
	categories    []string
	subcategories []string
	keywords      []string
}

// alcoholTypes is scanned in order; the first type whose name occurs in the
// ingredient name wins, so more specific entries must precede generic ones.
var alcoholTypes = []alcoholType{
	{"vodka", []string{"Spirits"}, []string{"Vodka"}, []string{"vodka"}},
	{"gin", []string{"Spirits"}, []string{"Gin"}, []string{"gin", "london dry", "plymouth"}},
	{"rum", []string{"Spirits"}, []string{"Rum"}, []string{"rum", "white rum", "dark rum", "spiced rum"}},
	{"whiskey", []string{"Spirits"}, []string{"Whisky", "Whiskey"}, []string{"whiskey", "whisky", "bourbon", "rye", "scotch"}},
	{"whisky", []string{"Spirits"}, []string{"Whisky", "Whiskey"}, []string{"whiskey", "whisky", "bourbon", "rye", "scotch"}},
	{"bourbon", []string{"Spirits"}, []string{"Whisky", "Whiskey"}, []string{"bourbon", "whiskey"}},
	{"scotch", []string{"Spirits"}, []string{"Whisky", "Whiskey"}, []string{"scotch", "whisky"}},
	{"tequila", []string{"Spirits"}, []string{"Tequila"}, []string{"tequila", "silver tequila", "gold tequila"}},
	{"brandy", []string{"Spirits"}, []string{"Brandy"}, []string{"brandy", "cognac"}},
	{"triple sec", []string{"Spirits"}, []string{"Liqueur"}, []string{"triple sec", "orange liqueur", "cointreau", "grand marnier"}},
	{"vermouth", []string{"Wine"}, []string{"Vermouth"}, []string{"vermouth", "dry vermouth", "sweet vermouth"}},
	{"amaretto", []string{"Spirits"}, []string{"Liqueur"}, []string{"amaretto", "almond liqueur"}},
	{"kahlua", []string{"Spirits"}, []string{"Liqueur"}, []string{"kahlua", "coffee liqueur"}},
	{"baileys", []string{"Spirits"}, []string{"Liqueur"}, []string{"baileys", "irish cream"}},
	{"wine", []string{"Wine"}, []string{"Red Wine", "White Wine"}, []string{"wine", "red wine", "white wine"}},
	{"beer", []string{"Beer & Cider"}, []string{"Beer"}, []string{"beer", "lager", "ale"}},
	{"champagne", []string{"Wine"}, []string{"Sparkling Wine"}, []string{"champagne", "sparkling wine", "prosecco"}},
}

// brandKeywords maps a lowercase keyword found in ingredient names to the
// brand name as printed on catalog products.
var brandKeywords = []struct {
	keyword string
	brand   string
}{
	{"grey goose", "Grey Goose"},
	{"absolut", "Absolut"},
	{"smirnoff", "Smirnoff"},
	{"tanqueray", "Tanqueray"},
	{"bombay", "Bombay"},
	{"hendricks", "Hendrick's"},
	{"jack daniels", "Jack Daniel's"},
	{"jim beam", "Jim Beam"},
	{"jameson", "Jameson"},
	{"crown royal", "Crown Royal"},
	{"johnnie walker", "Johnnie Walker"},
	{"macallan", "The Macallan"},
	{"patron", "Patrón"},
	{"jose cuervo", "Jose Cuervo"},
	{"bacardi", "Bacardi"},
	{"captain morgan", "Captain Morgan"},
	{"hennessy", "Hennessy"},
	{"cointreau", "Cointreau"},
	{"grand marnier", "Grand Marnier"},
}

// MatchConfig holds configuration for the product matcher
type MatchConfig struct {
	TierCandidateLimit int
}

// ProductMatcher scores catalog products against recipe ingredients with a
// linear, explainable model. It holds no mutable state.
type ProductMatcher struct {
	tierCandidateLimit int
}

// NewProductMatcher creates a matcher with the given configuration
func NewProductMatcher(config MatchConfig) *ProductMatcher {
	limit := config.TierCandidateLimit
	if limit <= 0 {
		limit = defaultTierCandidateLimit
	}
	return &ProductMatcher{tierCandidateLimit: limit}
}

// FindMatchingProducts ranks candidates against the ingredient, highest score
// first with ties kept in input order. Zero-score products are dropped.
// limit <= 0 returns every positive candidate.
func (m *ProductMatcher) FindMatchingProducts(
	ingredient domain.RecipeIngredient,
	candidates []domain.Product,
	limit int,
) []domain.MatchCandidate {
	categories := categoryFilters(ingredient)

	var scored []domain.MatchCandidate
	for _, product := range candidates {
		if !product.IsActive {
			continue
		}
		if len(categories) > 0 && !categories[product.Category] {
			continue
		}

		score := m.Score(ingredient, product)
		if score > 0 {
			scored = append(scored, domain.MatchCandidate{Product: product, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	applog.Debug(context.Background(), "matched products",
		"ingredient", ingredient.Name,
		"pool", len(candidates),
		"matches", len(scored))

	return scored
}

// FindBestMatch returns the highest ranked candidate that can be costed, or
// nil when none qualifies.
func (m *ProductMatcher) FindBestMatch(ingredient domain.RecipeIngredient, candidates []domain.Product) *domain.Product {
	for _, match := range m.FindMatchingProducts(ingredient, candidates, 0) {
		if match.Product.HasPricing() {
			product := match.Product
			return &product
		}
	}
	return nil
}

// FindPriceRangeOptions picks cheapest, mid-range and premium products by
// price per ml among the top scored candidates. Mid-range is the element at
// index len/2 after sorting, not the median price.
func (m *ProductMatcher) FindPriceRangeOptions(ingredient domain.RecipeIngredient, candidates []domain.Product) domain.PriceTierOptions {
	type pricedProduct struct {
		product    domain.Product
		pricePerML float64
	}

	var priced []pricedProduct
	for _, match := range m.FindMatchingProducts(ingredient, candidates, m.tierCandidateLimit) {
		if ppm, ok := match.Product.PricePerML(); ok {
			priced = append(priced, pricedProduct{product: match.Product, pricePerML: ppm})
		}
	}

	var options domain.PriceTierOptions
	if len(priced) == 0 {
		return options
	}

	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].pricePerML < priced[j].pricePerML
	})

	cheapest := priced[0].product
	options.Cheapest = &cheapest

	if len(priced) >= 2 {
		mid := priced[len(priced)/2].product
		options.MidRange = &mid
	}

	if len(priced) >= 3 {
		premium := priced[len(priced)-1].product
		options.Premium = &premium
	}

	return options
}

// Score computes the additive match score of product for ingredient,
// clamped at zero.
func (m *ProductMatcher) Score(ingredient domain.RecipeIngredient, product domain.Product) float64 {
	score := 0.0
	ingredientLower := strings.ToLower(ingredient.Name)
	nameLower := strings.ToLower(product.Name)
	brandLower := strings.ToLower(product.Brand)

	if ingredientLower == nameLower {
		score += exactNameBonus
	}

	if ingredient.BrandPreference != "" {
		preference := strings.ToLower(ingredient.BrandPreference)
		if strings.Contains(brandLower, preference) || strings.Contains(nameLower, preference) {
			score += brandPreferenceBonus
		}
	}

	score += alcoholTypeScore(ingredientLower, nameLower, brandLower)

	if ingredient.AlcoholCategory != "" && product.Category != "" &&
		strings.EqualFold(ingredient.AlcoholCategory, product.Category) {
		score += categoryBonus
	}

	if ingredient.AlcoholSubcategory != "" && product.Subcategory != "" &&
		strings.EqualFold(ingredient.AlcoholSubcategory, product.Subcategory) {
		score += subcategoryBonus
	}

	if minABV, abv, ok := abvPair(ingredient, product); ok {
		if abv >= minABV {
			score += abvSufficientBonus
		} else {
			score += abvTooLowPenalty
		}
	}

	score += keywordScore(ingredientLower, nameLower)
	score += brandKeywordScore(ingredientLower, brandLower, nameLower)

	if product.Price != nil && *product.Price > 0 {
		price := *product.Price
		if price >= sweetSpotMinPrice && price <= sweetSpotMaxPrice {
			score += sweetSpotPriceBonus
		} else if price > expensivePrice {
			score += expensivePenalty
		}
	}

	if product.VolumeML != nil && isStandardBottle(*product.VolumeML) {
		score += standardBottleBonus
	}

	return math.Max(0, score)
}

// VerifyMatch explains how product fits ingredient, for auditing a match.
func (m *ProductMatcher) VerifyMatch(ingredient domain.RecipeIngredient, product domain.Product) domain.MatchVerification {
	score := m.Score(ingredient, product)

	verification := domain.MatchVerification{
		OverallScore: score,
		MatchQuality: matchQuality(score),
		Checks: map[string]bool{
			"categoryMatch":  false,
			"abvSufficient":  false,
			"brandMatch":     false,
			"nameSimilarity": false,
		},
		Issues: []string{},
	}

	if ingredient.AlcoholCategory != "" && product.Category != "" {
		verification.Checks["categoryMatch"] = strings.Contains(
			strings.ToLower(product.Category), strings.ToLower(ingredient.AlcoholCategory))
	}

	if minABV, abv, ok := abvPair(ingredient, product); ok {
		verification.Checks["abvSufficient"] = abv >= minABV
		if abv < minABV {
			verification.Issues = append(verification.Issues,
				fmt.Sprintf("ABV too low: %g%% < %g%%", abv, minABV))
		}
	}

	nameLower := strings.ToLower(product.Name)
	if ingredient.BrandPreference != "" {
		preference := strings.ToLower(ingredient.BrandPreference)
		verification.Checks["brandMatch"] = strings.Contains(strings.ToLower(product.Brand), preference) ||
			strings.Contains(nameLower, preference)
	}

	for _, word := range strings.Fields(strings.ToLower(ingredient.Name)) {
		if utf8.RuneCountInString(word) >= minKeywordRunes && strings.Contains(nameLower, word) {
			verification.Checks["nameSimilarity"] = true
			break
		}
	}

	return verification
}

// categoryFilters returns the set of catalog categories implied by the
// ingredient, or nil when nothing can be inferred.
func categoryFilters(ingredient domain.RecipeIngredient) map[string]bool {
	filters := make(map[string]bool)

	if ingredient.AlcoholCategory != "" {
		filters[ingredient.AlcoholCategory] = true
	}

	if at := lookupAlcoholType(strings.ToLower(ingredient.Name)); at != nil {
		for _, category := range at.categories {
			filters[category] = true
		}
	}

	if len(filters) == 0 {
		return nil
	}
	return filters
}

// CategoriesFor lists the catalog categories an ingredient will be matched in.
// An empty result means the whole catalog is considered.
func CategoriesFor(ingredient domain.RecipeIngredient) []string {
	filters := categoryFilters(ingredient)
	categories := make([]string, 0, len(filters))
	for category := range filters {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func lookupAlcoholType(ingredientLower string) *alcoholType {
	for i := range alcoholTypes {
		if strings.Contains(ingredientLower, alcoholTypes[i].name) {
			return &alcoholTypes[i]
		}
	}
	return nil
}

// alcoholTypeScore awards the type bonus once when the ingredient's alcohol
// type has a keyword on the product name or brand.
func alcoholTypeScore(ingredientLower, nameLower, brandLower string) float64 {
	at := lookupAlcoholType(ingredientLower)
	if at == nil {
		return 0
	}
	for _, keyword := range at.keywords {
		if strings.Contains(nameLower, keyword) || strings.Contains(brandLower, keyword) {
			return alcoholTypeBonus
		}
	}
	return 0
}

// keywordScore awards a bonus for each ingredient word of three or more
// characters found in the product name. Repeated words count each time.
func keywordScore(ingredientLower, nameLower string) float64 {
	score := 0.0
	for _, word := range wordRegex.FindAllString(ingredientLower, -1) {
		if utf8.RuneCountInString(word) >= minKeywordRunes && strings.Contains(nameLower, word) {
			score += keywordWordBonus
		}
	}
	return score
}

// brandKeywordScore checks the first known brand keyword in the ingredient
// that also appears on the product.
func brandKeywordScore(ingredientLower, brandLower, nameLower string) float64 {
	for _, bk := range brandKeywords {
		if !strings.Contains(ingredientLower, bk.keyword) {
			continue
		}
		brand := strings.ToLower(bk.brand)
		if strings.Contains(brandLower, brand) || strings.Contains(nameLower, brand) {
			return brandKeywordBonus
		}
	}
	return 0
}

// abvPair returns the required and actual ABV when both are known and non-zero.
func abvPair(ingredient domain.RecipeIngredient, product domain.Product) (float64, float64, bool) {
	if ingredient.MinAlcoholPercentage == nil || product.AlcoholPercentage == nil {
		return 0, 0, false
	}
	minABV, abv := *ingredient.MinAlcoholPercentage, *product.AlcoholPercentage
	if minABV == 0 || abv == 0 {
		return 0, 0, false
	}
	return minABV, abv, true
}

func isStandardBottle(volume float64) bool {
	for _, size := range standardBottleSizes {
		if volume == size {
			return true
		}
	}
	return false
}

func matchQuality(score float64) string {
	switch {
	case score < 20:
		return "Poor"
	case score < 50:
		return "Good"
	default:
		return "Excellent"
	}
}
