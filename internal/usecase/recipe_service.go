package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pourcost/backend/internal/domain"
	applog "github.com/pourcost/backend/internal/log"
)

// RecipeService manages recipes and keeps ingredient volumes normalised
type RecipeService struct {
	recipes domain.RecipeRepository
}

// NewRecipeService creates a recipe service
func NewRecipeService(recipes domain.RecipeRepository) *RecipeService {
	return &RecipeService{recipes: recipes}
}

// CreateRecipe validates input and stores a new active recipe.
func (s *RecipeService) CreateRecipe(ctx context.Context, input domain.RecipeInput) (*domain.Recipe, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: recipe name is required", domain.ErrInvalidRequest)
	}
	if input.ServingSizeML < 0 {
		return nil, fmt.Errorf("%w: serving size must not be negative", domain.ErrInvalidRequest)
	}

	servingSize := input.ServingSizeML
	if servingSize == 0 {
		servingSize = domain.DefaultServingSizeML
	}

	recipe := &domain.Recipe{
		Name:            name,
		Category:        input.Category,
		Description:     input.Description,
		Instructions:    input.Instructions,
		Garnish:         input.Garnish,
		GlassType:       input.GlassType,
		Difficulty:      input.Difficulty,
		PrepTimeMinutes: input.PrepTimeMinutes,
		ServingSizeML:   servingSize,
		Source:          input.Source,
		IsActive:        true,
		Ingredients:     make([]domain.RecipeIngredient, 0, len(input.Ingredients)),
	}

	for i, in := range input.Ingredients {
		ingredient, err := buildIngredient(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", i+1, err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ingredient)
	}

	if err := s.recipes.CreateRecipe(ctx, recipe); err != nil {
		return nil, err
	}

	applog.Info(ctx, "created recipe", "recipe_id", recipe.ID, "name", recipe.Name, "ingredients", len(recipe.Ingredients))
	return recipe, nil
}

// GetRecipe returns an active recipe with its ingredients
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*domain.Recipe, error) {
	return s.recipes.GetRecipe(ctx, id)
}

// ListRecipes returns every active recipe
func (s *RecipeService) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return s.SearchRecipes(ctx, "")
}

// SearchRecipes returns active recipes whose name contains query, ignoring case
func (s *RecipeService) SearchRecipes(ctx context.Context, query string) ([]domain.Recipe, error) {
	recipes, err := s.recipes.ListRecipes(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []domain.Recipe{}
	}
	return recipes, nil
}

// DeleteRecipe deactivates a recipe. Stored calculations keep referring to it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uint) error {
	return s.recipes.DeactivateRecipe(ctx, id)
}

// AddIngredient appends an ingredient to an existing recipe
func (s *RecipeService) AddIngredient(ctx context.Context, recipeID uint, input domain.IngredientInput) (*domain.RecipeIngredient, error) {
	ingredient, err := buildIngredient(ctx, input)
	if err != nil {
		return nil, err
	}
	ingredient.RecipeID = recipeID

	if err := s.recipes.AddIngredient(ctx, &ingredient); err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// UpdateIngredient replaces an ingredient's fields, keeping its id and recipe
func (s *RecipeService) UpdateIngredient(ctx context.Context, id uint, input domain.IngredientInput) (*domain.RecipeIngredient, error) {
	existing, err := s.recipes.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}

	ingredient, err := buildIngredient(ctx, input)
	if err != nil {
		return nil, err
	}
	ingredient.ID = existing.ID
	ingredient.RecipeID = existing.RecipeID

	if err := s.recipes.UpdateIngredient(ctx, &ingredient); err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// RemoveIngredient deletes an ingredient
func (s *RecipeService) RemoveIngredient(ctx context.Context, id uint) error {
	return s.recipes.DeleteIngredient(ctx, id)
}

// buildIngredient validates input, applies defaults and derives AmountML
func buildIngredient(ctx context.Context, input domain.IngredientInput) (domain.RecipeIngredient, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.RecipeIngredient{}, fmt.Errorf("%w: ingredient name is required", domain.ErrInvalidRequest)
	}
	if input.Amount <= 0 {
		return domain.RecipeIngredient{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidRequest)
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return domain.RecipeIngredient{}, fmt.Errorf("%w: unit is required", domain.ErrInvalidRequest)
	}

	ingredientType := domain.IngredientType(strings.ToLower(strings.TrimSpace(string(input.Type))))
	if ingredientType == "" {
		ingredientType = domain.IngredientAlcohol
	}
	if !ingredientType.Valid() {
		return domain.RecipeIngredient{}, fmt.Errorf("%w: unknown ingredient type %q", domain.ErrInvalidRequest, input.Type)
	}

	amountML := input.Amount
	if KnownUnit(unit) {
		amountML = ToML(input.Amount, unit)
	} else {
		applog.Warn(ctx, "unknown unit, storing amount as ml", "ingredient", name, "unit", unit)
	}

	essential := true
	if input.IsEssential != nil {
		essential = *input.IsEssential
	}

	return domain.RecipeIngredient{
		Name:                 name,
		Type:                 ingredientType,
		Amount:               input.Amount,
		Unit:                 unit,
		AmountML:             amountML,
		AlcoholCategory:      input.AlcoholCategory,
		AlcoholSubcategory:   input.AlcoholSubcategory,
		MinAlcoholPercentage: input.MinAlcoholPercentage,
		BrandPreference:      input.BrandPreference,
		Notes:                input.Notes,
		IsEssential:          essential,
	}, nil
}
