package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pourcost/backend/internal/domain"
	applog "github.com/pourcost/backend/internal/log"
)

// SyncResult summarises one catalog import
type SyncResult struct {
	Fetched   int           `json:"fetched"`
	Upserted  int           `json:"upserted"`
	Unchanged int           `json:"unchanged"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"durationNs"`
}

// CatalogService imports products from an upstream feed into the catalog
type CatalogService struct {
	feed   domain.ProductFeed
	writer domain.ProductWriter
}

// NewCatalogService creates a catalog service
func NewCatalogService(feed domain.ProductFeed, writer domain.ProductWriter) *CatalogService {
	return &CatalogService{feed: feed, writer: writer}
}

// Sync fetches the feed and upserts every usable product. A failed row is
// counted and logged; only a failed fetch aborts the import.
func (s *CatalogService) Sync(ctx context.Context) (*SyncResult, error) {
	start := time.Now()

	products, err := s.feed.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog feed: %w", err)
	}

	result := &SyncResult{Fetched: len(products)}
	for _, product := range products {
		if strings.TrimSpace(product.ID) == "" || strings.TrimSpace(product.Name) == "" {
			result.Skipped++
			continue
		}

		changed, err := s.writer.UpsertProduct(ctx, product)
		if err != nil {
			applog.Warn(ctx, "failed to upsert product", "product_id", product.ID, "error", err)
			result.Failed++
			continue
		}
		if changed {
			result.Upserted++
		} else {
			result.Unchanged++
		}
	}

	result.Duration = time.Since(start)
	applog.Info(ctx, "catalog sync finished",
		"fetched", result.Fetched,
		"upserted", result.Upserted,
		"unchanged", result.Unchanged,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", result.Duration)

	return result, nil
}
