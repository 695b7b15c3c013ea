package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductCatalog reads products from the scraped catalog.
type ProductCatalog interface {
	ListActiveProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
}

// ProductWriter stores products coming from a catalog feed.
// UpsertProduct reports whether the stored row changed.
type ProductWriter interface {
	UpsertProduct(ctx context.Context, product Product) (bool, error)
}

// AvailabilityLookup supplies per-store stock for a product. An empty city
// means every store.
type AvailabilityLookup interface {
	ProductAvailability(ctx context.Context, productID, city string) ([]StoreAvailability, error)
}

// RecipeRepository persists recipes and their ingredients
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, recipe *Recipe) error
	GetRecipe(ctx context.Context, id uint) (*Recipe, error)
	ListRecipes(ctx context.Context, query string) ([]Recipe, error)
	DeactivateRecipe(ctx context.Context, id uint) error
	AddIngredient(ctx context.Context, ingredient *RecipeIngredient) error
	GetIngredient(ctx context.Context, id uint) (*RecipeIngredient, error)
	UpdateIngredient(ctx context.Context, ingredient *RecipeIngredient) error
	DeleteIngredient(ctx context.Context, id uint) error
}

// CalculationRepository persists cost calculation snapshots
type CalculationRepository interface {
	SaveCalculation(ctx context.Context, calc *DrinkCostCalculation) error
	GetCalculation(ctx context.Context, id uint) (*DrinkCostCalculation, error)
}

// PriceHistoryReader returns recorded prices newest first
type PriceHistoryReader interface {
	PriceHistory(ctx context.Context, productID string, since time.Time) ([]PricePoint, error)
}

// StoreWriter registers retail locations
type StoreWriter interface {
	UpsertStore(ctx context.Context, store Store) error
}

// ProductFeed fetches normalised product rows from an upstream feed
type ProductFeed interface {
	FetchProducts(ctx context.Context) ([]Product, error)
}
