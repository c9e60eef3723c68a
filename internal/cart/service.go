// Package cart owns the per-user mutable cart. Carts store product
// references only; every read resolves them against the catalog, so a
// product deleted after being added simply disappears from the view.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/cache"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/store"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// ProductResolver is the catalog collaborator the cart needs: reference
// resolution only.
type ProductResolver interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	carts    store.Collection[domain.Cart]
	products ProductResolver
	cache    cache.CartCache
	sfg      singleflight.Group
	log      *logrus.Logger
}

func NewService(carts store.Collection[domain.Cart], products ProductResolver, c cache.CartCache, log *logrus.Logger) *Service {
	if c == nil {
		c = cache.Disabled()
	}
	return &Service{carts: carts, products: products, cache: c, log: log}
}

// Get returns the user's cart, creating an empty one on first access.
// Concurrent callers dedupe onto one flight and receive the same value, so
// the result is read-only; mutating paths go through fetch instead.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithError(err).Warn("cart cache get failed")
		}

		cart, err := s.fetch(ctx, userID)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, userID, cart); err != nil {
			s.log.WithError(err).Warn("cart cache set failed")
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// fetch reads the cart fresh from storage, creating an empty one on first
// access, and always returns a value private to the caller. Lookup-then-
// create leaves a benign race: two concurrent first accesses can each
// create a cart. The durable backend's unique index rejects the duplicate;
// in memory mode the duplicate is unreachable and harmless.
func (s *Service) fetch(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.FindOne(ctx, store.Where("user_id", store.OpEq, userID))
	if errors.Is(err, store.ErrNotFound) {
		now := time.Now().UTC()
		cart = &domain.Cart{UserID: userID, Items: []domain.CartItem{}, CreatedAt: now, UpdatedAt: now}
		if err := s.carts.Create(ctx, cart); err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return cart, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ItemView pairs a resolved product with its cart quantity.
type ItemView struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type View struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []ItemView `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// View resolves the cart's product references at read time. References to
// products that no longer exist are filtered from the view but left in
// storage.
func (s *Service) View(ctx context.Context, userID string) (*View, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart)
}

func (s *Service) resolve(ctx context.Context, cart *domain.Cart) (*View, error) {
	view := &View{ID: cart.ID, UserID: cart.UserID, Items: []ItemView{}, UpdatedAt: cart.UpdatedAt}
	for _, it := range cart.Items {
		product, err := s.products.Get(ctx, it.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %s: %w", it.ProductID, err)
		}
		view.Items = append(view.Items, ItemView{Product: *product, Quantity: it.Quantity})
	}
	return view, nil
}

// AddItem merges into an existing line or appends a new one. The product
// must exist at add time.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, fmt.Errorf("product %s: %w", productID, err)
	}

	cart, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, domain.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart)
}

func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.carts.FindOne(ctx, store.Where("user_id", store.OpEq, userID))
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart)
}

// RemoveItem drops the line for productID. Removing an absent line is a
// no-op, matching a $pull.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*View, error) {
	cart, err := s.carts.FindOne(ctx, store.Where("user_id", store.OpEq, userID))
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	cart.Items = kept

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart)
}

// Clear empties the cart. A user without a cart clears to nothing
// successfully.
func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.carts.FindOne(ctx, store.Where("user_id", store.OpEq, userID))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	cart.Items = []domain.CartItem{}
	return s.save(ctx, cart)
}

func (s *Service) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	err := s.carts.Update(ctx, cart.ID, map[string]any{
		"items":      cart.Items,
		"updated_at": cart.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	s.invalidate(cart.UserID)
	return nil
}

func (s *Service) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.WithError(err).Warn("cart cache invalidate failed")
	}
}
