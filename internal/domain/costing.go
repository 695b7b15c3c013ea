package domain

import (
	"fmt"
	"strings"
	"time"
)

// CostOption selects which price tier is used for alcohol ingredients
type CostOption string

const (
	CostCheapest  CostOption = "cheapest"
	CostMidRange  CostOption = "mid_range"
	CostPremium   CostOption = "premium"
	CostBestMatch CostOption = "best_match"
)

// DefaultCostOption is used when a caller does not name a tier.
const DefaultCostOption = CostMidRange

// ParseCostOption normalises s into a CostOption. An empty string yields
// DefaultCostOption.
func ParseCostOption(s string) (CostOption, error) {
	opt := CostOption(strings.ToLower(strings.TrimSpace(s)))
	switch opt {
	case "":
		return DefaultCostOption, nil
	case CostCheapest, CostMidRange, CostPremium, CostBestMatch:
		return opt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCostOption, s)
}

// MixerProductID marks ingredient costs priced from the mixer table.
const MixerProductID = "MIXER"

// MatchCandidate pairs a product with its match score
type MatchCandidate struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// PriceTierOptions holds the tier picks for one ingredient. A nil tier means
// too few priced candidates were available.
type PriceTierOptions struct {
	Cheapest *Product `json:"cheapest"`
	MidRange *Product `json:"midRange"`
	Premium  *Product `json:"premium"`
}

// For returns the product picked for a tier option. best_match is not a tier
// and always yields nil here.
func (o PriceTierOptions) For(option CostOption) *Product {
	switch option {
	case CostCheapest:
		return o.Cheapest
	case CostMidRange:
		return o.MidRange
	case CostPremium:
		return o.Premium
	}
	return nil
}

// MatchVerification explains how well a product fits an ingredient
type MatchVerification struct {
	OverallScore float64         `json:"overallScore"`
	MatchQuality string          `json:"matchQuality"`
	Checks       map[string]bool `json:"checks"`
	Issues       []string        `json:"issues"`
}

// IngredientCost is the per-ingredient result of a cost calculation
type IngredientCost struct {
	ID                 uint     `json:"id,omitempty"`
	CalculationID      uint     `json:"calculationId,omitempty"`
	RecipeIngredientID uint     `json:"recipeIngredientId"`
	IngredientName     string   `json:"ingredientName"`
	ProductID          string   `json:"productId"`
	ProductName        string   `json:"productName"`
	Brand              string   `json:"brand,omitempty"`
	ProductPrice       float64  `json:"productPrice"`
	ProductVolumeML    float64  `json:"productVolumeMl"`
	PricePerML         float64  `json:"pricePerMl"`
	RegularPrice       *float64 `json:"regularPrice,omitempty"`
	IsOnSale           bool     `json:"isOnSale"`
	SaleSavings        float64  `json:"saleSavings"`
	AmountNeededML     float64  `json:"amountNeededMl"`
	Cost               float64  `json:"cost"`
	InStock            bool     `json:"inStock"`
	StoresAvailable    []string `json:"storesAvailable"`
	IsCheapestOption   bool     `json:"isCheapestOption"`
	IsPremiumOption    bool     `json:"isPremiumOption"`
	AlternativeRank    int      `json:"alternativeRank"`
}

// SaleItem records an ingredient whose matched product is discounted
type SaleItem struct {
	Ingredient string  `json:"ingredient"`
	Product    string  `json:"product"`
	Savings    float64 `json:"savings"`
}

// DrinkCostCalculation is a point-in-time costing snapshot for a recipe.
type DrinkCostCalculation struct {
	ID                      uint             `json:"id"`
	RecipeID                uint             `json:"recipeId"`
	RecipeName              string           `json:"recipeName"`
	CostOption              CostOption       `json:"costOption"`
	City                    string           `json:"city"`
	CalculatedAt            time.Time        `json:"calculatedAt"`
	TotalAlcoholCost        float64          `json:"totalAlcoholCost"`
	TotalMixerCost          float64          `json:"totalMixerCost"`
	TotalCost               float64          `json:"totalCost"`
	CostPerML               float64          `json:"costPerMl"`
	MarkupSuggested         float64          `json:"markupSuggested"`
	SuggestedSellingPrice   float64          `json:"suggestedSellingPrice"`
	LowestCostOption        float64          `json:"lowestCostOption"`
	PremiumCostOption       float64          `json:"premiumCostOption"`
	AllIngredientsAvailable bool             `json:"allIngredientsAvailable"`
	MissingIngredients      []string         `json:"missingIngredients"`
	IngredientsOnSale       []SaleItem       `json:"ingredientsOnSale"`
	TotalSaleSavings        float64          `json:"totalSaleSavings"`
	IngredientCosts         []IngredientCost `json:"ingredientCosts"`
}

// CostBreakdown is the human-facing report for one calculation
type CostBreakdown struct {
	CalculationID    uint                  `json:"calculationId"`
	RecipeName       string                `json:"recipeName"`
	TotalCost        float64               `json:"totalCost"`
	CostPerML        float64               `json:"costPerMl"`
	SuggestedPrice   float64               `json:"suggestedPrice"`
	MarkupPercentage float64               `json:"markupPercentage"`
	Ingredients      []BreakdownIngredient `json:"ingredients"`
	Availability     BreakdownAvailability `json:"availability"`
	CostOptions      BreakdownCostOptions  `json:"costOptions"`
}

// BreakdownIngredient is one formatted ingredient line of a CostBreakdown
type BreakdownIngredient struct {
	Name         string  `json:"name"`
	Brand        string  `json:"brand,omitempty"`
	AmountNeeded string  `json:"amountNeeded"`
	Cost         string  `json:"cost"`
	PricePerML   string  `json:"pricePerMl"`
	BottlePrice  string  `json:"bottlePrice"`
	BottleSize   string  `json:"bottleSize"`
	InStock      bool    `json:"inStock"`
	OnSale       bool    `json:"onSale"`
	SaleSavings  *string `json:"saleSavings"`
}

type BreakdownAvailability struct {
	AllAvailable bool       `json:"allAvailable"`
	Missing      []string   `json:"missing"`
	OnSale       []SaleItem `json:"onSale"`
	TotalSavings float64    `json:"totalSavings"`
}

type BreakdownCostOptions struct {
	Cheapest float64 `json:"cheapest"`
	Current  float64 `json:"current"`
	Premium  float64 `json:"premium"`
}

// RecipeComparison is one row of a recipe cost comparison
type RecipeComparison struct {
	RecipeID       uint    `json:"recipeId"`
	RecipeName     string  `json:"recipeName"`
	CalculationID  uint    `json:"calculationId"`
	TotalCost      float64 `json:"totalCost"`
	CostPerML      float64 `json:"costPerMl"`
	SuggestedPrice float64 `json:"suggestedPrice"`
	ProfitMargin   float64 `json:"profitMargin"`
	AllAvailable   bool    `json:"allAvailable"`
}

// IngredientMatches is the ranked product report for one recipe ingredient
type IngredientMatches struct {
	Ingredient   RecipeIngredient   `json:"ingredient"`
	Categories   []string           `json:"categories"`
	Candidates   []MatchCandidate   `json:"candidates"`
	BestMatch    *Product           `json:"bestMatch"`
	Tiers        PriceTierOptions   `json:"tiers"`
	Verification *MatchVerification `json:"verification,omitempty"`
}
