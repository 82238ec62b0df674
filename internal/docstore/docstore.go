package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and Update when no document exists at the
// given path.
var ErrNotFound = errors.New("document not found")

// Doc is one query result: the document id and its raw fields.
type Doc struct {
	ID   string
	Data map[string]any
}

// Filter is a single equality or range predicate on a field.
type Filter struct {
	Field string
	Op    string
	Value any
}

func Where(field, op string, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

type QueryOptions struct {
	OrderField string
	Descending bool
	LimitN     int
}

type QueryOption func(*QueryOptions)

func OrderBy(field string, desc bool) QueryOption {
	return func(o *QueryOptions) {
		o.OrderField = field
		o.Descending = desc
	}
}

func Limit(n int) QueryOption {
	return func(o *QueryOptions) {
		o.LimitN = n
	}
}

type incrementValue struct {
	Delta int
}

// Increment marks a field for an atomic add inside Update or Set. The store
// translates it to its native increment primitive.
func Increment(delta int) any {
	return incrementValue{Delta: delta}
}

// Store is a document database: documents addressed by slash paths
// (collection/id, with arbitrarily nested subcollections), schemaless field
// maps, and change subscriptions.
//
// Paths with an even number of segments address documents; Query and
// Subscribe take collection paths with an odd number of segments.
type Store interface {
	// Get reads the document at path, ErrNotFound when absent.
	Get(ctx context.Context, path string) (map[string]any, error)

	// Set writes fields at path, creating the document if needed. With
	// merge, existing fields not named are kept; without, the document is
	// replaced.
	Set(ctx context.Context, path string, fields map[string]any, merge bool) error

	// Update patches an existing document; field keys may use dot notation
	// for nested fields. ErrNotFound when the document is absent.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Add creates a document with a generated id and returns the id.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Query lists the documents of a collection matching every filter.
	Query(ctx context.Context, collection string, filters []Filter, opts ...QueryOption) ([]Doc, error)

	// Delete removes the document at path. Deleting an absent document is
	// not an error.
	Delete(ctx context.Context, path string) error

	// Subscribe watches a filtered collection and emits the full matching
	// set on every change. The cancel func releases the watch; the channel
	// closes when the watch ends.
	Subscribe(ctx context.Context, collection string, filters []Filter) (<-chan []Doc, func())
}

// Field accessors below tolerate the loose typing of stored documents:
// numbers may round-trip as int, int64 or float64, and arrays as []any.

func Str(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func Int(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func Float(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func Bool(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func Time(data map[string]any, key string) time.Time {
	if t, ok := data[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}

func Strings(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func Ints(data map[string]any, key string) []int {
	switch v := data[key].(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case int:
				out = append(out, n)
			case int64:
				out = append(out, int(n))
			case float64:
				out = append(out, int(n))
			}
		}
		return out
	}
	return nil
}

func Times(data map[string]any, key string) []time.Time {
	switch v := data[key].(type) {
	case []time.Time:
		return v
	case []any:
		out := make([]time.Time, 0, len(v))
		for _, item := range v {
			if t, ok := item.(time.Time); ok {
				out = append(out, t)
			}
		}
		return out
	}
	return nil
}

func Map(data map[string]any, key string) map[string]any {
	m, _ := data[key].(map[string]any)
	return m
}
