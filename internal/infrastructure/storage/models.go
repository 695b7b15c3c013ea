package storage

import (
	"time"

	"github.com/pourcost/backend/internal/domain"
)

// Product is a catalog row keyed by the storefront's product id
type Product struct {
	ID                string   `gorm:"primaryKey;size:64"`
	Name              string   `gorm:"not null"`
	Brand             string   `gorm:"index"`
	Category          string   `gorm:"index"`
	Subcategory       string   `gorm:"index"`
	Price             *float64
	RegularPrice      *float64
	VolumeML          *float64 `gorm:"column:volume_ml"`
	AlcoholPercentage *float64
	Country           string
	Region            string
	Description       string `gorm:"type:text"`
	ProductURL        string
	IsActive          bool `gorm:"not null;index"`
	LastUpdated       time.Time
	CreatedAt         time.Time
}

// PriceHistory records every observed price change
type PriceHistory struct {
	ID           uint   `gorm:"primaryKey"`
	ProductID    string `gorm:"size:64;not null;index"`
	Price        float64
	RegularPrice *float64
	RecordedAt   time.Time `gorm:"not null;index"`
}

// Store is a retail location
type Store struct {
	StoreID   string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"not null"`
	Address   string
	City      string `gorm:"index"`
	Province  string
	IsActive  bool `gorm:"not null"`
	UpdatedAt time.Time
}

// StoreInventory is the stock of one product at one store
type StoreInventory struct {
	ID          uint   `gorm:"primaryKey"`
	StoreID     string `gorm:"size:64;not null;uniqueIndex:idx_store_product"`
	ProductID   string `gorm:"size:64;not null;uniqueIndex:idx_store_product;index"`
	Quantity    int
	InStock     bool
	LowStock    bool
	LastChecked time.Time
}

// Recipe is a stored drink recipe
type Recipe struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"not null;index"`
	Category        string
	Description     string `gorm:"type:text"`
	Instructions    string `gorm:"type:text"`
	Garnish         string
	GlassType       string
	Difficulty      string
	PrepTimeMinutes int
	ServingSizeML   float64 `gorm:"column:serving_size_ml"`
	Source          string
	IsActive        bool               `gorm:"not null;index"`
	Ingredients     []RecipeIngredient `gorm:"foreignKey:RecipeID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecipeIngredient is one ingredient line of a recipe
type RecipeIngredient struct {
	ID                   uint   `gorm:"primaryKey"`
	RecipeID             uint   `gorm:"not null;index"`
	Name                 string `gorm:"not null"`
	Type                 string `gorm:"not null"`
	Amount               float64
	Unit                 string
	AmountML             float64 `gorm:"column:amount_ml"`
	AlcoholCategory      string
	AlcoholSubcategory   string
	MinAlcoholPercentage *float64
	BrandPreference      string
	Notes                string
	IsEssential          bool
}

// Calculation is a persisted cost snapshot. List columns are JSON text.
type Calculation struct {
	ID                      uint   `gorm:"primaryKey"`
	RecipeID                uint   `gorm:"not null;index"`
	RecipeName              string `gorm:"not null"`
	CostOption              string `gorm:"not null"`
	City                    string
	CalculatedAt            time.Time `gorm:"not null;index"`
	TotalAlcoholCost        float64
	TotalMixerCost          float64
	TotalCost               float64
	CostPerML               float64 `gorm:"column:cost_per_ml"`
	MarkupSuggested         float64
	SuggestedSellingPrice   float64
	LowestCostOption        float64
	PremiumCostOption       float64
	AllIngredientsAvailable bool
	MissingIngredients      []string          `gorm:"type:text;serializer:json"`
	IngredientsOnSale       []domain.SaleItem `gorm:"type:text;serializer:json"`
	TotalSaleSavings        float64
	IngredientCosts         []IngredientCost `gorm:"foreignKey:CalculationID"`
}

// TableName keeps the historical table name
func (Calculation) TableName() string {
	return "drink_cost_calculations"
}

// IngredientCost is the cost line of one resolved ingredient
type IngredientCost struct {
	ID                 uint `gorm:"primaryKey"`
	CalculationID      uint `gorm:"not null;index"`
	RecipeIngredientID uint
	IngredientName     string
	ProductID          string `gorm:"size:64"`
	ProductName        string
	Brand              string
	ProductPrice       float64
	ProductVolumeML    float64 `gorm:"column:product_volume_ml"`
	PricePerML         float64 `gorm:"column:price_per_ml"`
	RegularPrice       *float64
	IsOnSale           bool
	SaleSavings        float64
	AmountNeededML     float64 `gorm:"column:amount_needed_ml"`
	Cost               float64
	InStock            bool
	StoresAvailable    []string `gorm:"type:text;serializer:json"`
	IsCheapestOption   bool
	IsPremiumOption    bool
	AlternativeRank    int
}

// Models lists every table managed by AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&Product{},
		&PriceHistory{},
		&Store{},
		&StoreInventory{},
		&Recipe{},
		&RecipeIngredient{},
		&Calculation{},
		&IngredientCost{},
	}
}

func (p Product) toDomain() domain.Product {
	return domain.Product{
		ID:                p.ID,
		Name:              p.Name,
		Brand:             p.Brand,
		Category:          p.Category,
		Subcategory:       p.Subcategory,
		Price:             p.Price,
		RegularPrice:      p.RegularPrice,
		VolumeML:          p.VolumeML,
		AlcoholPercentage: p.AlcoholPercentage,
		Country:           p.Country,
		Region:            p.Region,
		Description:       p.Description,
		ProductURL:        p.ProductURL,
		IsActive:          p.IsActive,
		LastUpdated:       p.LastUpdated,
	}
}

func productFromDomain(p domain.Product) Product {
	return Product{
		ID:                p.ID,
		Name:              p.Name,
		Brand:             p.Brand,
		Category:          p.Category,
		Subcategory:       p.Subcategory,
		Price:             p.Price,
		RegularPrice:      p.RegularPrice,
		VolumeML:          p.VolumeML,
		AlcoholPercentage: p.AlcoholPercentage,
		Country:           p.Country,
		Region:            p.Region,
		Description:       p.Description,
		ProductURL:        p.ProductURL,
		IsActive:          p.IsActive,
		LastUpdated:       p.LastUpdated,
	}
}

func (r Recipe) toDomain() domain.Recipe {
	recipe := domain.Recipe{
		ID:              r.ID,
		Name:            r.Name,
		Category:        r.Category,
		Description:     r.Description,
		Instructions:    r.Instructions,
		Garnish:         r.Garnish,
		GlassType:       r.GlassType,
		Difficulty:      r.Difficulty,
		PrepTimeMinutes: r.PrepTimeMinutes,
		ServingSizeML:   r.ServingSizeML,
		Source:          r.Source,
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt,
		Ingredients:     make([]domain.RecipeIngredient, 0, len(r.Ingredients)),
	}
	for _, ingredient := range r.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, ingredient.toDomain())
	}
	return recipe
}

func recipeFromDomain(r *domain.Recipe) Recipe {
	row := Recipe{
		ID:              r.ID,
		Name:            r.Name,
		Category:        r.Category,
		Description:     r.Description,
		Instructions:    r.Instructions,
		Garnish:         r.Garnish,
		GlassType:       r.GlassType,
		Difficulty:      r.Difficulty,
		PrepTimeMinutes: r.PrepTimeMinutes,
		ServingSizeML:   r.ServingSizeML,
		Source:          r.Source,
		IsActive:        r.IsActive,
	}
	for i := range r.Ingredients {
		row.Ingredients = append(row.Ingredients, ingredientFromDomain(&r.Ingredients[i]))
	}
	return row
}

func (i RecipeIngredient) toDomain() domain.RecipeIngredient {
	return domain.RecipeIngredient{
		ID:                   i.ID,
		RecipeID:             i.RecipeID,
		Name:                 i.Name,
		Type:                 domain.IngredientType(i.Type),
		Amount:               i.Amount,
		Unit:                 i.Unit,
		AmountML:             i.AmountML,
		AlcoholCategory:      i.AlcoholCategory,
		AlcoholSubcategory:   i.AlcoholSubcategory,
		MinAlcoholPercentage: i.MinAlcoholPercentage,
		BrandPreference:      i.BrandPreference,
		Notes:                i.Notes,
		IsEssential:          i.IsEssential,
	}
}

func ingredientFromDomain(i *domain.RecipeIngredient) RecipeIngredient {
	return RecipeIngredient{
		ID:                   i.ID,
		RecipeID:             i.RecipeID,
		Name:                 i.Name,
		Type:                 string(i.Type),
		Amount:               i.Amount,
		Unit:                 i.Unit,
		AmountML:             i.AmountML,
		AlcoholCategory:      i.AlcoholCategory,
		AlcoholSubcategory:   i.AlcoholSubcategory,
		MinAlcoholPercentage: i.MinAlcoholPercentage,
		BrandPreference:      i.BrandPreference,
		Notes:                i.Notes,
		IsEssential:          i.IsEssential,
	}
}

func (c Calculation) toDomain() domain.DrinkCostCalculation {
	calc := domain.DrinkCostCalculation{
		ID:                      c.ID,
		RecipeID:                c.RecipeID,
		RecipeName:              c.RecipeName,
		CostOption:              domain.CostOption(c.CostOption),
		City:                    c.City,
		CalculatedAt:            c.CalculatedAt,
		TotalAlcoholCost:        c.TotalAlcoholCost,
		TotalMixerCost:          c.TotalMixerCost,
		TotalCost:               c.TotalCost,
		CostPerML:               c.CostPerML,
		MarkupSuggested:         c.MarkupSuggested,
		SuggestedSellingPrice:   c.SuggestedSellingPrice,
		LowestCostOption:        c.LowestCostOption,
		PremiumCostOption:       c.PremiumCostOption,
		AllIngredientsAvailable: c.AllIngredientsAvailable,
		MissingIngredients:      c.MissingIngredients,
		IngredientsOnSale:       c.IngredientsOnSale,
		TotalSaleSavings:        c.TotalSaleSavings,
		IngredientCosts:         make([]domain.IngredientCost, 0, len(c.IngredientCosts)),
	}
	if calc.MissingIngredients == nil {
		calc.MissingIngredients = []string{}
	}
	if calc.IngredientsOnSale == nil {
		calc.IngredientsOnSale = []domain.SaleItem{}
	}
	for _, cost := range c.IngredientCosts {
		calc.IngredientCosts = append(calc.IngredientCosts, cost.toDomain())
	}
	return calc
}

func calculationFromDomain(c *domain.DrinkCostCalculation) Calculation {
	row := Calculation{
		RecipeID:                c.RecipeID,
		RecipeName:              c.RecipeName,
		CostOption:              string(c.CostOption),
		City:                    c.City,
		CalculatedAt:            c.CalculatedAt,
		TotalAlcoholCost:        c.TotalAlcoholCost,
		TotalMixerCost:          c.TotalMixerCost,
		TotalCost:               c.TotalCost,
		CostPerML:               c.CostPerML,
		MarkupSuggested:         c.MarkupSuggested,
		SuggestedSellingPrice:   c.SuggestedSellingPrice,
		LowestCostOption:        c.LowestCostOption,
		PremiumCostOption:       c.PremiumCostOption,
		AllIngredientsAvailable: c.AllIngredientsAvailable,
		MissingIngredients:      c.MissingIngredients,
		IngredientsOnSale:       c.IngredientsOnSale,
		TotalSaleSavings:        c.TotalSaleSavings,
	}
	for _, cost := range c.IngredientCosts {
		row.IngredientCosts = append(row.IngredientCosts, IngredientCost{
			RecipeIngredientID: cost.RecipeIngredientID,
			IngredientName:     cost.IngredientName,
			ProductID:          cost.ProductID,
			ProductName:        cost.ProductName,
			Brand:              cost.Brand,
			ProductPrice:       cost.ProductPrice,
			ProductVolumeML:    cost.ProductVolumeML,
			PricePerML:         cost.PricePerML,
			RegularPrice:       cost.RegularPrice,
			IsOnSale:           cost.IsOnSale,
			SaleSavings:        cost.SaleSavings,
			AmountNeededML:     cost.AmountNeededML,
			Cost:               cost.Cost,
			InStock:            cost.InStock,
			StoresAvailable:    cost.StoresAvailable,
			IsCheapestOption:   cost.IsCheapestOption,
			IsPremiumOption:    cost.IsPremiumOption,
			AlternativeRank:    cost.AlternativeRank,
		})
	}
	return row
}

func (c IngredientCost) toDomain() domain.IngredientCost {
	stores := c.StoresAvailable
	if stores == nil {
		stores = []string{}
	}
	return domain.IngredientCost{
		ID:                 c.ID,
		CalculationID:      c.CalculationID,
		RecipeIngredientID: c.RecipeIngredientID,
		IngredientName:     c.IngredientName,
		ProductID:          c.ProductID,
		ProductName:        c.ProductName,
		Brand:              c.Brand,
		ProductPrice:       c.ProductPrice,
		ProductVolumeML:    c.ProductVolumeML,
		PricePerML:         c.PricePerML,
		RegularPrice:       c.RegularPrice,
		IsOnSale:           c.IsOnSale,
		SaleSavings:        c.SaleSavings,
		AmountNeededML:     c.AmountNeededML,
		Cost:               c.Cost,
		InStock:            c.InStock,
		StoresAvailable:    stores,
		IsCheapestOption:   c.IsCheapestOption,
		IsPremiumOption:    c.IsPremiumOption,
		AlternativeRank:    c.AlternativeRank,
	}
}
