// Package catalog is the read surface over the product collection. Write
// paths (admin product management) live outside the order core.
package catalog

import (
	"context"
	"fmt"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/store"
)

type Service struct {
	products store.Collection[domain.Product]
}

func NewService(products store.Collection[domain.Product]) *Service {
	return &Service{products: products}
}

// Get resolves one product reference. Returns store.ErrNotFound for
// vanished products; callers decide whether that is an error.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	Category string
	MinPrice int64
	MaxPrice int64
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	q := store.All()
	if f.Category != "" {
		q = q.And("category", store.OpEq, f.Category)
	}
	if f.MinPrice > 0 {
		q = q.And("price", store.OpGte, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.And("price", store.OpLte, f.MaxPrice)
	}

	products, err := s.products.Find(ctx, q, &store.FindOptions{SortField: "created_at", SortDesc: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	values, err := s.products.Distinct(ctx, "category", store.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok && c != "" {
			categories = append(categories, c)
		}
	}
	return categories, nil
}
