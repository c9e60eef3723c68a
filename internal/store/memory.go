package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is the volatile backend. It lives for the process lifetime
// only and is reset on restart; callers must not rely on data surviving.
// The store is created in main and injected, never reached through a
// global, so tests own their state.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]bson.M
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]bson.M)}
}

// Reset drops every collection. Used at shutdown and between tests.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]bson.M)
}

type memoryCollection[T any] struct {
	store *MemoryStore
	name  string
}

// NewMemory binds one named collection inside the shared memory store.
func NewMemory[T any](s *MemoryStore, name string) Collection[T] {
	return &memoryCollection[T]{store: s, name: name}
}

func (m *memoryCollection[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	for _, doc := range m.store.data[m.name] {
		if q.matches(doc) {
			var rec T
			if err := fromDoc(doc, &rec); err != nil {
				return nil, err
			}
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	doc := m.lookup(id)
	if doc == nil {
		return nil, ErrNotFound
	}
	var rec T
	if err := fromDoc(doc, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *memoryCollection[T]) Find(ctx context.Context, q Query, opts *FindOptions) ([]T, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	var matched []bson.M
	for _, doc := range m.store.data[m.name] {
		if q.matches(doc) {
			matched = append(matched, doc)
		}
	}

	if opts != nil {
		if opts.SortField != "" {
			sort.SliceStable(matched, func(i, j int) bool {
				a, _ := getPath(matched[i], opts.SortField)
				b, _ := getPath(matched[j], opts.SortField)
				if opts.SortDesc {
					return compareValues(b, a) < 0
				}
				return compareValues(a, b) < 0
			})
		}
		if opts.Skip > 0 {
			if opts.Skip >= int64(len(matched)) {
				matched = nil
			} else {
				matched = matched[opts.Skip:]
			}
		}
		if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
			matched = matched[:opts.Limit]
		}
	}

	recs := make([]T, 0, len(matched))
	for _, doc := range matched {
		var rec T
		if err := fromDoc(doc, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (m *memoryCollection[T]) Create(ctx context.Context, rec *T) error {
	doc, err := toDoc(rec)
	if err != nil {
		return err
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = uuid.NewString()
	}

	m.store.mu.Lock()
	m.store.data[m.name] = append(m.store.data[m.name], doc)
	m.store.mu.Unlock()

	return fromDoc(doc, rec)
}

func (m *memoryCollection[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	// Normalize values through the codec so later reads decode the same
	// way they would from MongoDB.
	patch, err := toDoc(fields)
	if err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	doc := m.lookup(id)
	if doc == nil {
		return ErrNotFound
	}
	for field := range fields {
		setPath(doc, field, patch[field])
	}
	return nil
}

func (m *memoryCollection[T]) Delete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	docs := m.store.data[m.name]
	for i, doc := range docs {
		if doc["_id"] == id {
			m.store.data[m.name] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryCollection[T]) Count(ctx context.Context, q Query) (int64, error) {
	if err := q.validate(); err != nil {
		return 0, err
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	var n int64
	for _, doc := range m.store.data[m.name] {
		if q.matches(doc) {
			n++
		}
	}
	return n, nil
}

func (m *memoryCollection[T]) Distinct(ctx context.Context, field string, q Query) ([]any, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	seen := make(map[string]struct{})
	var values []any
	for _, doc := range m.store.data[m.name] {
		if !q.matches(doc) {
			continue
		}
		v, ok := getPath(doc, field)
		if !ok || v == nil {
			continue
		}
		key := fmt.Sprintf("%v", v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// lookup must be called with the store lock held.
func (m *memoryCollection[T]) lookup(id string) bson.M {
	for _, doc := range m.store.data[m.name] {
		if doc["_id"] == id {
			return doc
		}
	}
	return nil
}

// matches assumes the query was validated.
func (q Query) matches(doc bson.M) bool {
	for _, c := range q.conds {
		v, ok := getPath(doc, c.field)
		if !ok {
			return false
		}
		switch c.op {
		case OpEq:
			if !valuesEqual(v, c.value) {
				return false
			}
		case OpGte:
			if compareValues(v, c.value) < 0 {
				return false
			}
		case OpLte:
			if compareValues(v, c.value) > 0 {
				return false
			}
		}
	}
	if q.or != nil {
		hit := false
		for _, sub := range q.or {
			if sub.matches(doc) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	if as, aok := asString(a); aok {
		bs, bok := asString(b)
		return bok && as == bs
	}
	if ab, aok := a.(bool); aok {
		bb, bok := b.(bool)
		return bok && ab == bb
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two decoded values: -1, 0 or 1. Values that cannot
// be ordered compare as equal, matching how MongoDB skips type-mismatched
// documents in range scans.
func compareValues(a, b any) int {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, aok := asString(a); aok {
		if bs, bok := asString(b); bok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			}
			return 0
		}
	}
	return 0
}

// asFloat widens any numeric or time-valued representation for comparison.
// Dates from the codec arrive as primitive.DateTime, query values as
// time.Time; both collapse to epoch milliseconds.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return float64(t), true
	case time.Time:
		return float64(t.UnixMilli()), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func asString(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}
