package domain

import "time"

// IngredientType classifies how an ingredient is priced
type IngredientType string

const (
	IngredientAlcohol IngredientType = "alcohol"
	IngredientMixer   IngredientType = "mixer"
	IngredientGarnish IngredientType = "garnish"
)

// Valid reports whether t is one of the known ingredient types.
func (t IngredientType) Valid() bool {
	switch t {
	case IngredientAlcohol, IngredientMixer, IngredientGarnish:
		return true
	}
	return false
}

// DefaultServingSizeML is used when a recipe is created without a serving size.
const DefaultServingSizeML = 120.0

// Recipe is a drink recipe with its ingredient list
type Recipe struct {
	ID              uint               `json:"id"`
	Name            string             `json:"name"`
	Category        string             `json:"category,omitempty"`
	Description     string             `json:"description,omitempty"`
	Instructions    string             `json:"instructions,omitempty"`
	Garnish         string             `json:"garnish,omitempty"`
	GlassType       string             `json:"glassType,omitempty"`
	Difficulty      string             `json:"difficulty,omitempty"`
	PrepTimeMinutes int                `json:"prepTimeMinutes,omitempty"`
	ServingSizeML   float64            `json:"servingSizeMl"`
	Source          string             `json:"source,omitempty"`
	IsActive        bool               `json:"isActive"`
	Ingredients     []RecipeIngredient `json:"ingredients"`
	CreatedAt       time.Time          `json:"createdAt,omitempty"`
}

// RecipeIngredient is one line of a recipe. AmountML is derived from Amount
// and Unit when the ingredient is written.
type RecipeIngredient struct {
	ID                   uint           `json:"id"`
	RecipeID             uint           `json:"recipeId"`
	Name                 string         `json:"name"`
	Type                 IngredientType `json:"type"`
	Amount               float64        `json:"amount"`
	Unit                 string         `json:"unit"`
	AmountML             float64        `json:"amountMl"`
	AlcoholCategory      string         `json:"alcoholCategory,omitempty"`
	AlcoholSubcategory   string         `json:"alcoholSubcategory,omitempty"`
	MinAlcoholPercentage *float64       `json:"minAlcoholPercentage,omitempty"`
	BrandPreference      string         `json:"brandPreference,omitempty"`
	Notes                string         `json:"notes,omitempty"`
	IsEssential          bool           `json:"isEssential"`
}

// RecipeInput is the payload for creating a recipe
type RecipeInput struct {
	Name            string            `json:"name" binding:"required"`
	Category        string            `json:"category"`
	Description     string            `json:"description"`
	Instructions    string            `json:"instructions"`
	Garnish         string            `json:"garnish"`
	GlassType       string            `json:"glassType"`
	Difficulty      string            `json:"difficulty"`
	PrepTimeMinutes int               `json:"prepTimeMinutes"`
	ServingSizeML   float64           `json:"servingSizeMl"`
	Source          string            `json:"source"`
	Ingredients     []IngredientInput `json:"ingredients"`
}

// IngredientInput is the payload for adding or replacing an ingredient.
// Type defaults to alcohol and IsEssential to true when omitted.
type IngredientInput struct {
	Name                 string         `json:"name" binding:"required"`
	Type                 IngredientType `json:"type"`
	Amount               float64        `json:"amount" binding:"required,gt=0"`
	Unit                 string         `json:"unit" binding:"required"`
	AlcoholCategory      string         `json:"alcoholCategory"`
	AlcoholSubcategory   string         `json:"alcoholSubcategory"`
	MinAlcoholPercentage *float64       `json:"minAlcoholPercentage"`
	BrandPreference      string         `json:"brandPreference"`
	Notes                string         `json:"notes"`
	IsEssential          *bool          `json:"isEssential"`
}
