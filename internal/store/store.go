// Package store is the persistence layer shared by every service in the
// process. It exposes one collection contract with two interchangeable
// backends: MongoDB for durable deployments and an in-process memory store
// for demo mode and tests. The backend is chosen once at startup and never
// switched at runtime.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is the normal result for a missing record. Callers decide
	// whether absence is an error.
	ErrNotFound = errors.New("record not found")

	// ErrBadQuery reports a malformed predicate before it reaches a backend.
	ErrBadQuery = errors.New("malformed query")
)

// FindOptions controls ordering and pagination for Find.
type FindOptions struct {
	SortField string
	SortDesc  bool
	Skip      int64
	Limit     int64
}

// Collection is the uniform CRUD/query surface over one record type.
// Both backends implement it with identical semantics: Create assigns a
// globally unique id when the record carries none, and operations on a
// missing id return ErrNotFound rather than failing loudly.
type Collection[T any] interface {
	FindOne(ctx context.Context, q Query) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, q Query, opts *FindOptions) ([]T, error)
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, q Query) (int64, error)
	Distinct(ctx context.Context, field string, q Query) ([]any, error)
}
