package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pourcost/backend/internal/domain"
	applog "github.com/pourcost/backend/internal/log"
)

const (
	defaultHistoryDays = 90
	maxHistoryDays     = 365
	searchResultLimit  = 20
)

// ProductService serves catalog reads and store registration outside the
// feed import.
type ProductService struct {
	catalog      domain.ProductCatalog
	availability domain.AvailabilityLookup
	history      domain.PriceHistoryReader
	stores       domain.StoreWriter
	now          func() time.Time
}

// NewProductService creates a product service
func NewProductService(
	catalog domain.ProductCatalog,
	availability domain.AvailabilityLookup,
	history domain.PriceHistoryReader,
	stores domain.StoreWriter,
) *ProductService {
	return &ProductService{
		catalog:      catalog,
		availability: availability,
		history:      history,
		stores:       stores,
		now:          time.Now,
	}
}

// SearchProducts finds active products whose name contains query, optionally
// narrowed to categories containing category. A name search returns at most
// 20 products; a category listing is unbounded.
func (s *ProductService) SearchProducts(ctx context.Context, query, category string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	category = strings.TrimSpace(category)
	if query == "" && category == "" {
		return nil, fmt.Errorf("%w: a search term or category is required", domain.ErrInvalidRequest)
	}

	filter := domain.ProductFilter{NameContains: query, CategoryContains: category}
	if query != "" {
		filter.Limit = searchResultLimit
	}

	products, err := s.catalog.ListActiveProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Availability reports where a product is stocked in city. The combined
// "general" line is always included; an empty city covers every store.
func (s *ProductService) Availability(ctx context.Context, productID, city string) (*domain.AvailabilityReport, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}
	city = strings.TrimSpace(city)

	lines, err := s.availability.ProductAvailability(ctx, productID, city)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	report := &domain.AvailabilityReport{
		ProductID: productID,
		City:      city,
		Stores:    lines,
	}
	if report.Stores == nil {
		report.Stores = []domain.StoreAvailability{}
	}
	for _, line := range report.Stores {
		if line.InStock {
			report.InStock = true
			break
		}
	}
	return report, nil
}

// PriceHistory reports recorded prices for a product over the last days.
// Zero days means the default window.
func (s *ProductService) PriceHistory(ctx context.Context, productID string, days int) (*domain.PriceHistoryReport, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}
	if days < 0 || days > maxHistoryDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrInvalidRequest, maxHistoryDays)
	}
	if days == 0 {
		days = defaultHistoryDays
	}

	since := s.now().AddDate(0, 0, -days)
	points, err := s.history.PriceHistory(ctx, productID, since)
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}

	report := &domain.PriceHistoryReport{
		ProductID: productID,
		Days:      days,
		Points:    points,
	}
	if report.Points == nil {
		report.Points = []domain.PricePoint{}
	}
	if len(points) == 0 {
		return report, nil
	}

	lowest, highest := points[0].Price, points[0].Price
	for _, p := range points[1:] {
		if p.Price < lowest {
			lowest = p.Price
		}
		if p.Price > highest {
			highest = p.Price
		}
	}
	report.Current = domain.Float(points[0].Price)
	report.Lowest = domain.Float(lowest)
	report.Highest = domain.Float(highest)
	report.OnSale = points[0].OnSale()

	return report, nil
}

// RegisterStore validates and stores a retail location. The combined
// "general" line is reserved.
func (s *ProductService) RegisterStore(ctx context.Context, store domain.Store) (*domain.Store, error) {
	store.StoreID = strings.TrimSpace(store.StoreID)
	store.Name = strings.TrimSpace(store.Name)
	store.City = strings.TrimSpace(store.City)

	switch {
	case store.StoreID == "":
		return nil, fmt.Errorf("%w: store id is required", domain.ErrInvalidRequest)
	case store.StoreID == domain.GeneralStoreID:
		return nil, fmt.Errorf("%w: store id %q is reserved", domain.ErrInvalidRequest, domain.GeneralStoreID)
	case store.Name == "":
		return nil, fmt.Errorf("%w: store name is required", domain.ErrInvalidRequest)
	}

	if err := s.stores.UpsertStore(ctx, store); err != nil {
		return nil, fmt.Errorf("save store: %w", err)
	}

	applog.Info(ctx, "registered store", "store_id", store.StoreID, "city", store.City, "active", store.IsActive)
	return &store, nil
}
