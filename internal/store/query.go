package store

import (
	"fmt"
	"reflect"
	"time"
)

// Op is a predicate operator. The query language is deliberately small:
// field equality, numeric range on one field, and a logical OR of
// sub-queries. No joins, no regex.
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

type cond struct {
	field string
	op    Op
	value any
}

// Query is an immutable predicate built with Where/And/AnyOf. The zero
// value (or All) matches every record.
type Query struct {
	conds []cond
	or    []Query
}

// All matches every record in the collection.
func All() Query { return Query{} }

// Where starts a query with a single condition.
func Where(field string, op Op, value any) Query {
	return Query{conds: []cond{{field: field, op: op, value: value}}}
}

// And returns a copy of q with one more condition, combined conjunctively.
func (q Query) And(field string, op Op, value any) Query {
	conds := make([]cond, len(q.conds), len(q.conds)+1)
	copy(conds, q.conds)
	q.conds = append(conds, cond{field: field, op: op, value: value})
	return q
}

// AnyOf matches records satisfying at least one sub-query. Calling it with
// no sub-queries is malformed and rejected by the backends.
func AnyOf(sub ...Query) Query {
	return Query{or: append([]Query{}, sub...)}
}

func (q Query) validate() error {
	if len(q.conds) == 0 && q.or != nil && len(q.or) == 0 {
		return fmt.Errorf("%w: empty OR", ErrBadQuery)
	}
	for _, c := range q.conds {
		if c.field == "" {
			return fmt.Errorf("%w: empty field name", ErrBadQuery)
		}
		if c.value == nil {
			return fmt.Errorf("%w: nil value for field %q", ErrBadQuery, c.field)
		}
		switch c.op {
		case OpEq:
		case OpGte, OpLte:
			if !ordered(c.value) {
				return fmt.Errorf("%w: range on non-numeric value for field %q", ErrBadQuery, c.field)
			}
		default:
			return fmt.Errorf("%w: unknown operator %q", ErrBadQuery, c.op)
		}
	}
	for _, sub := range q.or {
		if err := sub.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ordered reports whether v can participate in a range comparison.
func ordered(v any) bool {
	if _, ok := v.(time.Time); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
