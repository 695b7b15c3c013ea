package domain

import "errors"

var (
	// ErrRecipeNotFound is returned when a recipe id does not resolve
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrNoIngredients is returned when a recipe has no ingredients to cost
	ErrNoIngredients = errors.New("recipe has no ingredients")

	// ErrIngredientNotFound is returned when an ingredient id does not resolve
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrCalculationNotFound is returned when a cost calculation id does not resolve
	ErrCalculationNotFound = errors.New("cost calculation not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidCostOption is returned for an unknown cost option
	ErrInvalidCostOption = errors.New("invalid cost option")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCatalogFeedFailure is returned when the product feed request fails
	ErrCatalogFeedFailure = errors.New("catalog feed request failed")
)
