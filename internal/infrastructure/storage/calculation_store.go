package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pourcost/backend/internal/domain"
)

// CalculationStore persists cost calculation snapshots. Rows are never
// updated once written.
type CalculationStore struct {
	db *gorm.DB
}

// NewCalculationStore creates a calculation store
func NewCalculationStore(db *gorm.DB) *CalculationStore {
	return &CalculationStore{db: db}
}

// SaveCalculation writes the calculation and its ingredient costs in one
// transaction and copies the generated ids back.
func (s *CalculationStore) SaveCalculation(ctx context.Context, calc *domain.DrinkCostCalculation) error {
	row := calculationFromDomain(calc)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("save calculation: %w", err)
	}

	calc.ID = row.ID
	for i := range calc.IngredientCosts {
		calc.IngredientCosts[i].ID = row.IngredientCosts[i].ID
		calc.IngredientCosts[i].CalculationID = row.ID
	}
	return nil
}

func (s *CalculationStore) GetCalculation(ctx context.Context, id uint) (*domain.DrinkCostCalculation, error) {
	var row Calculation
	err := s.db.WithContext(ctx).
		Preload("IngredientCosts", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCalculationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get calculation %d: %w", id, err)
	}

	calc := row.toDomain()
	return &calc, nil
}
