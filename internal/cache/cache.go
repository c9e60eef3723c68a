package cache

import (
	"context"
	"errors"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Disabled is the cache used when no Redis address is configured: every
// read misses and writes vanish.
func Disabled() CartCache { return disabled{} }

type disabled struct{}

func (disabled) Get(context.Context, string) (*domain.Cart, error) { return nil, ErrCacheMiss }
func (disabled) Set(context.Context, string, *domain.Cart) error   { return nil }
func (disabled) Delete(context.Context, string) error              { return nil }
