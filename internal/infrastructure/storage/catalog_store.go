package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pourcost/backend/internal/domain"
)

// CatalogStore reads and writes catalog products, price history and store
// inventory.
type CatalogStore struct {
	db *gorm.DB
}

// NewCatalogStore creates a catalog store
func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// ListActiveProducts returns active products ordered by id. The result is a
// consistent snapshot for the duration of one calculation.
func (s *CatalogStore) ListActiveProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if len(filter.Categories) > 0 {
		query = query.Where("category IN ?", filter.Categories)
	}
	if filter.NameContains != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.NameContains))
	}
	if filter.CategoryContains != "" {
		query = query.Where("LOWER(category) LIKE ?", likePattern(filter.CategoryContains))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []Product
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

// UpsertProduct inserts a new product or applies non-empty changed fields to
// an existing one. A price change appends a PriceHistory row. Inventory lines
// on the product are upserted alongside. It reports whether the product row
// was created or changed.
func (s *CatalogStore) UpsertProduct(ctx context.Context, product domain.Product) (bool, error) {
	if strings.TrimSpace(product.ID) == "" {
		return false, fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var existing Product
		err := tx.Where("id = ?", product.ID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := productFromDomain(product)
			row.LastUpdated = now
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			if row.Price != nil {
				if err := addPriceHistory(tx, row, now); err != nil {
					return err
				}
			}
			changed = true
		case err != nil:
			return err
		default:
			priceChanged := applyProductChanges(&existing, product)
			if priceChanged || existing.LastUpdated.IsZero() || s.rowDiffers(tx, existing) {
				existing.LastUpdated = now
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				changed = true
			}
			if priceChanged {
				if err := addPriceHistory(tx, existing, now); err != nil {
					return err
				}
			}
		}

		return upsertInventory(tx, product.ID, product.Inventory, now)
	})
	if err != nil {
		return false, fmt.Errorf("upsert product %s: %w", product.ID, err)
	}
	return changed, nil
}

// rowDiffers reports whether the in-memory row differs from what is stored
func (s *CatalogStore) rowDiffers(tx *gorm.DB, row Product) bool {
	var stored Product
	if err := tx.Where("id = ?", row.ID).Take(&stored).Error; err != nil {
		return true
	}
	return stored.Name != row.Name ||
		stored.Brand != row.Brand ||
		stored.Category != row.Category ||
		stored.Subcategory != row.Subcategory ||
		!sameFloat(stored.VolumeML, row.VolumeML) ||
		!sameFloat(stored.AlcoholPercentage, row.AlcoholPercentage) ||
		stored.Country != row.Country ||
		stored.Region != row.Region ||
		stored.Description != row.Description ||
		stored.ProductURL != row.ProductURL ||
		stored.IsActive != row.IsActive
}

// applyProductChanges copies non-empty incoming fields onto row and reports
// whether the price moved.
func applyProductChanges(row *Product, incoming domain.Product) bool {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&row.Name, incoming.Name)
	setString(&row.Brand, incoming.Brand)
	setString(&row.Category, incoming.Category)
	setString(&row.Subcategory, incoming.Subcategory)
	setString(&row.Country, incoming.Country)
	setString(&row.Region, incoming.Region)
	setString(&row.Description, incoming.Description)
	setString(&row.ProductURL, incoming.ProductURL)
	if incoming.VolumeML != nil {
		row.VolumeML = incoming.VolumeML
	}
	if incoming.AlcoholPercentage != nil {
		row.AlcoholPercentage = incoming.AlcoholPercentage
	}
	row.IsActive = incoming.IsActive

	if incoming.Price != nil && !sameFloat(row.Price, incoming.Price) {
		row.Price = incoming.Price
		row.RegularPrice = incoming.RegularPrice
		return true
	}
	return false
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func addPriceHistory(tx *gorm.DB, row Product, at time.Time) error {
	return tx.Create(&PriceHistory{
		ProductID:    row.ID,
		Price:        *row.Price,
		RegularPrice: row.RegularPrice,
		RecordedAt:   at,
	}).Error
}

// upsertInventory writes stock lines and registers any store named by them
func upsertInventory(tx *gorm.DB, productID string, lines []domain.StoreAvailability, now time.Time) error {
	for _, line := range lines {
		if line.StoreID == "" {
			continue
		}

		if line.StoreID != domain.GeneralStoreID && line.StoreName != "" {
			store := Store{StoreID: line.StoreID, Name: line.StoreName, City: line.City, IsActive: true}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "store_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "city", "updated_at"}),
			}).Create(&store).Error; err != nil {
				return err
			}
		}

		checked := line.LastChecked
		if checked.IsZero() {
			checked = now
		}
		inventory := StoreInventory{
			StoreID:     line.StoreID,
			ProductID:   productID,
			Quantity:    line.Quantity,
			InStock:     line.InStock,
			LowStock:    line.LowStock,
			LastChecked: checked,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "in_stock", "low_stock", "last_checked"}),
		}).Create(&inventory).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpsertStore registers or updates a retail location
func (s *CatalogStore) UpsertStore(ctx context.Context, store domain.Store) error {
	row := Store{
		StoreID:  store.StoreID,
		Name:     store.Name,
		Address:  store.Address,
		City:     store.City,
		Province: store.Province,
		IsActive: store.IsActive,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "city", "province", "is_active", "updated_at"}),
	}).Create(&row).Error
}

// ProductAvailability lists stock lines for a product. Combined "general"
// lines are always included; store lines only for active stores whose city
// contains the requested city, ignoring case. An empty city matches all.
func (s *CatalogStore) ProductAvailability(ctx context.Context, productID, city string) ([]domain.StoreAvailability, error) {
	var inventory []StoreInventory
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id").
		Find(&inventory).Error; err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	var storeIDs []string
	for _, line := range inventory {
		if line.StoreID != domain.GeneralStoreID {
			storeIDs = append(storeIDs, line.StoreID)
		}
	}

	stores := make(map[string]Store, len(storeIDs))
	if len(storeIDs) > 0 {
		var rows []Store
		if err := s.db.WithContext(ctx).
			Where("store_id IN ? AND is_active = ?", storeIDs, true).
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load stores: %w", err)
		}
		for _, row := range rows {
			stores[row.StoreID] = row
		}
	}

	cityLower := strings.ToLower(strings.TrimSpace(city))
	availability := []domain.StoreAvailability{}
	for _, line := range inventory {
		entry := domain.StoreAvailability{
			StoreID:     line.StoreID,
			InStock:     line.InStock,
			Quantity:    line.Quantity,
			LowStock:    line.LowStock,
			LastChecked: line.LastChecked,
		}

		if line.StoreID == domain.GeneralStoreID {
			entry.StoreName = domain.GeneralStoreName
			availability = append(availability, entry)
			continue
		}

		store, ok := stores[line.StoreID]
		if !ok {
			continue
		}
		if cityLower != "" && !strings.Contains(strings.ToLower(store.City), cityLower) {
			continue
		}
		entry.StoreName = store.Name
		entry.City = store.City
		availability = append(availability, entry)
	}

	return availability, nil
}

// PriceHistory returns recorded prices for a product since the given time,
// newest first.
func (s *CatalogStore) PriceHistory(ctx context.Context, productID string, since time.Time) ([]domain.PricePoint, error) {
	var rows []PriceHistory
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND recorded_at >= ?", productID, since).
		Order("recorded_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	points := make([]domain.PricePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.PricePoint{
			Price:        row.Price,
			RegularPrice: row.RegularPrice,
			RecordedAt:   row.RecordedAt,
		})
	}
	return points, nil
}
