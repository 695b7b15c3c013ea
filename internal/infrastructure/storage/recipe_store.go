package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pourcost/backend/internal/domain"
)

// RecipeStore persists recipes and their ingredients
type RecipeStore struct {
	db *gorm.DB
}

// NewRecipeStore creates a recipe store
func NewRecipeStore(db *gorm.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// CreateRecipe inserts the recipe with its ingredients and writes generated
// ids back onto it.
func (s *RecipeStore) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	row := recipeFromDomain(recipe)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}

	recipe.ID = row.ID
	recipe.CreatedAt = row.CreatedAt
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].ID = row.Ingredients[i].ID
		recipe.Ingredients[i].RecipeID = row.ID
	}
	return nil
}

// GetRecipe loads an active recipe with its ingredients in insertion order
func (s *RecipeStore) GetRecipe(ctx context.Context, id uint) (*domain.Recipe, error) {
	var row Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Where("id = ? AND is_active = ?", id, true).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}

	recipe := row.toDomain()
	return &recipe, nil
}

// ListRecipes returns active recipes ordered by name. A non-empty query
// matches names case-insensitively.
func (s *RecipeStore) ListRecipes(ctx context.Context, query string) ([]domain.Recipe, error) {
	tx := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Where("is_active = ?", true)
	if q := strings.TrimSpace(query); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var rows []Recipe
	if err := tx.Order("name").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	recipes := make([]domain.Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, row.toDomain())
	}
	return recipes, nil
}

// DeactivateRecipe soft-deletes a recipe
func (s *RecipeStore) DeactivateRecipe(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&Recipe{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("deactivate recipe %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrRecipeNotFound
	}
	return nil
}

// AddIngredient appends an ingredient to an active recipe
func (s *RecipeStore) AddIngredient(ctx context.Context, ingredient *domain.RecipeIngredient) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Recipe{}).
			Where("id = ? AND is_active = ?", ingredient.RecipeID, true).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check recipe %d: %w", ingredient.RecipeID, err)
		}
		if count == 0 {
			return domain.ErrRecipeNotFound
		}

		row := ingredientFromDomain(ingredient)
		row.ID = 0
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("add ingredient: %w", err)
		}
		ingredient.ID = row.ID
		return nil
	})
}

func (s *RecipeStore) GetIngredient(ctx context.Context, id uint) (*domain.RecipeIngredient, error) {
	var row RecipeIngredient
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrIngredientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient %d: %w", id, err)
	}

	ingredient := row.toDomain()
	return &ingredient, nil
}

// UpdateIngredient replaces every column of an existing ingredient
func (s *RecipeStore) UpdateIngredient(ctx context.Context, ingredient *domain.RecipeIngredient) error {
	row := ingredientFromDomain(ingredient)
	result := s.db.WithContext(ctx).
		Model(&RecipeIngredient{}).
		Where("id = ?", ingredient.ID).
		Select("*").
		Omit("id").
		Updates(&row)
	if result.Error != nil {
		return fmt.Errorf("update ingredient %d: %w", ingredient.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrIngredientNotFound
	}
	return nil
}

func (s *RecipeStore) DeleteIngredient(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&RecipeIngredient{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete ingredient %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrIngredientNotFound
	}
	return nil
}
