package store

import (
	"context"
	"testing"
	"time"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProducts(t *testing.T) Collection[domain.Product] {
	t.Helper()
	return NewMemory[domain.Product](NewMemoryStore(), "products")
}

func seed(t *testing.T, c Collection[domain.Product], ps ...domain.Product) {
	t.Helper()
	for i := range ps {
		require.NoError(t, c.Create(context.Background(), &ps[i]))
	}
}

func TestCreateAssignsID(t *testing.T) {
	c := newProducts(t)
	p := domain.Product{Name: "RFID Reader", Price: 4500}

	require.NoError(t, c.Create(context.Background(), &p))
	require.NotEmpty(t, p.ID)

	got, err := c.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "RFID Reader", got.Name)
	assert.Equal(t, int64(4500), got.Price)
}

func TestCreateKeepsSuppliedID(t *testing.T) {
	c := newProducts(t)
	p := domain.Product{ID: "p-1", Name: "Sensor"}

	require.NoError(t, c.Create(context.Background(), &p))
	assert.Equal(t, "p-1", p.ID)
}

func TestFindByIDNotFound(t *testing.T) {
	c := newProducts(t)
	_, err := c.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindOneEquality(t *testing.T) {
	c := newProducts(t)
	seed(t, c,
		domain.Product{Name: "A", Category: "readers"},
		domain.Product{Name: "B", Category: "sensors"},
	)

	got, err := c.FindOne(context.Background(), Where("category", OpEq, "sensors"))
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	_, err = c.FindOne(context.Background(), Where("category", OpEq, "cables"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindRange(t *testing.T) {
	c := newProducts(t)
	seed(t, c,
		domain.Product{Name: "cheap", Price: 50},
		domain.Product{Name: "mid", Price: 500},
		domain.Product{Name: "dear", Price: 5000},
	)

	got, err := c.Find(context.Background(),
		Where("price", OpGte, int64(100)).And("price", OpLte, int64(1000)), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mid", got[0].Name)
}

func TestFindOr(t *testing.T) {
	c := newProducts(t)
	seed(t, c,
		domain.Product{Name: "A", Category: "readers"},
		domain.Product{Name: "B", Category: "sensors"},
		domain.Product{Name: "C", Category: "cables"},
	)

	got, err := c.Find(context.Background(), AnyOf(
		Where("category", OpEq, "readers"),
		Where("category", OpEq, "cables"),
	), nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFindSortSkipLimit(t *testing.T) {
	c := newProducts(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, c,
		domain.Product{Name: "first", CreatedAt: base},
		domain.Product{Name: "second", CreatedAt: base.Add(time.Hour)},
		domain.Product{Name: "third", CreatedAt: base.Add(2 * time.Hour)},
	)

	got, err := c.Find(context.Background(), All(), &FindOptions{
		SortField: "created_at",
		SortDesc:  true,
		Skip:      1,
		Limit:     1,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Name)
}

func TestUpdatePartial(t *testing.T) {
	c := newProducts(t)
	p := domain.Product{Name: "Reader", Price: 100, Category: "readers"}
	seed(t, c, p)

	all, err := c.Find(context.Background(), All(), nil)
	require.NoError(t, err)
	id := all[0].ID

	require.NoError(t, c.Update(context.Background(), id, map[string]any{"price": int64(250)}))

	got, err := c.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(250), got.Price)
	assert.Equal(t, "readers", got.Category, "untouched fields survive a partial update")
}

func TestUpdateDottedPath(t *testing.T) {
	s := NewMemoryStore()
	orders := NewMemory[domain.Order](s, "orders")
	o := domain.Order{OrderNumber: "AA1", Tracking: domain.Tracking{Carrier: "Atlas Express"}}
	require.NoError(t, orders.Create(context.Background(), &o))

	require.NoError(t, orders.Update(context.Background(), o.ID, map[string]any{
		"tracking.tracking_number": "TRK-42",
	}))

	got, err := orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "TRK-42", got.Tracking.TrackingNumber)
	assert.Equal(t, "Atlas Express", got.Tracking.Carrier, "sibling fields merge, not replace")
}

func TestUpdateMissingID(t *testing.T) {
	c := newProducts(t)
	err := c.Update(context.Background(), "missing", map[string]any{"price": int64(1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	c := newProducts(t)
	p := domain.Product{Name: "gone"}
	seed(t, c, p)

	all, _ := c.Find(context.Background(), All(), nil)
	require.NoError(t, c.Delete(context.Background(), all[0].ID))

	_, err := c.FindByID(context.Background(), all[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Delete(context.Background(), all[0].ID), ErrNotFound)
}

func TestCountAndDistinct(t *testing.T) {
	c := newProducts(t)
	seed(t, c,
		domain.Product{Name: "A", Category: "readers"},
		domain.Product{Name: "B", Category: "readers"},
		domain.Product{Name: "C", Category: "sensors"},
	)

	n, err := c.Count(context.Background(), Where("category", OpEq, "readers"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	vals, err := c.Distinct(context.Background(), "category", All())
	require.NoError(t, err)
	assert.Len(t, vals, 2)
}

func TestMalformedQueries(t *testing.T) {
	c := newProducts(t)

	_, err := c.Find(context.Background(), Where("", OpEq, "x"), nil)
	assert.ErrorIs(t, err, ErrBadQuery)

	_, err = c.Find(context.Background(), Where("price", OpGte, "not-a-number"), nil)
	assert.ErrorIs(t, err, ErrBadQuery)

	_, err = c.Find(context.Background(), Where("name", Op("regex"), "x"), nil)
	assert.ErrorIs(t, err, ErrBadQuery)

	_, err = c.Find(context.Background(), AnyOf(), nil)
	assert.ErrorIs(t, err, ErrBadQuery)
}

func TestCollectionsIsolatedInOneStore(t *testing.T) {
	s := NewMemoryStore()
	products := NewMemory[domain.Product](s, "products")
	carts := NewMemory[domain.Cart](s, "carts")

	p := domain.Product{Name: "X"}
	require.NoError(t, products.Create(context.Background(), &p))

	n, err := carts.Count(context.Background(), All())
	require.NoError(t, err)
	assert.Zero(t, n)

	s.Reset()
	n, err = products.Count(context.Background(), All())
	require.NoError(t, err)
	assert.Zero(t, n)
}
