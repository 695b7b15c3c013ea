package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pourcost/backend/internal/domain"
)

// MockProductFeed returns a canned product list
type MockProductFeed struct {
	products []domain.Product
	err      error
}

func (m *MockProductFeed) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

// MockProductWriter records upserts and reports a change for unseen ids
type MockProductWriter struct {
	stored map[string]domain.Product
	failOn string
}

func NewMockProductWriter() *MockProductWriter {
	return &MockProductWriter{stored: make(map[string]domain.Product)}
}

func (m *MockProductWriter) UpsertProduct(ctx context.Context, product domain.Product) (bool, error) {
	if product.ID == m.failOn {
		return false, errors.New("write failed")
	}
	_, seen := m.stored[product.ID]
	m.stored[product.ID] = product
	return !seen, nil
}

func TestCatalogService_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts and counts feed rows", func(t *testing.T) {
		feed := &MockProductFeed{products: []domain.Product{
			buffaloTrace(),
			spirit("b", "Tanqueray London Dry Gin", "Tanqueray", "Gin", 32.95, 750, 47.3),
			{ID: "", Name: "No Id"},
			{ID: "c", Name: "  "},
			spirit("bad", "Broken Row", "X", "Rum", 10, 750, 40),
		}}
		writer := NewMockProductWriter()
		writer.stored["b"] = domain.Product{ID: "b"}
		writer.failOn = "bad"

		result, err := NewCatalogService(feed, writer).Sync(ctx)
		require.NoError(t, err)

		assert.Equal(t, 5, result.Fetched)
		assert.Equal(t, 1, result.Upserted)
		assert.Equal(t, 1, result.Unchanged)
		assert.Equal(t, 2, result.Skipped)
		assert.Equal(t, 1, result.Failed)
		assert.Contains(t, writer.stored, "bt")
	})

	t.Run("fails when the feed fails", func(t *testing.T) {
		feed := &MockProductFeed{err: domain.ErrCatalogFeedFailure}
		_, err := NewCatalogService(feed, NewMockProductWriter()).Sync(ctx)
		assert.ErrorIs(t, err, domain.ErrCatalogFeedFailure)
	})

	t.Run("empty feed is a no-op", func(t *testing.T) {
		writer := NewMockProductWriter()
		result, err := NewCatalogService(&MockProductFeed{}, writer).Sync(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.Fetched)
		assert.Empty(t, writer.stored)
	})
}
