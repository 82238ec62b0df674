package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests. It mirrors the
// production store's semantics: slash paths, merge sets, dotted update
// paths, atomic increments and change notification.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
	seq  int
	subs []*memorySub
}

type memorySub struct {
	collection string
	filters    []Filter
	ch         chan []Doc
	done       chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]map[string]any{}}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, fields map[string]any, merge bool) error {
	s.mu.Lock()
	doc, ok := s.docs[path]
	if !ok || !merge {
		doc = map[string]any{}
		s.docs[path] = doc
	}
	for key, value := range fields {
		setField(doc, key, value)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	doc, ok := s.docs[path]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for key, value := range fields {
		setField(doc, key, value)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	s.seq++
	id := fmt.Sprintf("doc%04d", s.seq)
	doc := map[string]any{}
	for key, value := range fields {
		setField(doc, key, value)
	}
	s.docs[collection+"/"+id] = doc
	s.mu.Unlock()

	s.notify()
	return id, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filters []Filter, opts ...QueryOption) ([]Doc, error) {
	var options QueryOptions
	for _, opt := range opts {
		opt(&options)
	}

	s.mu.RLock()
	docs := s.collect(collection, filters)
	s.mu.RUnlock()

	if options.OrderField != "" {
		field := options.OrderField
		sort.SliceStable(docs, func(i, j int) bool {
			cmp := compareValues(docs[i].Data[field], docs[j].Data[field])
			if options.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if options.LimitN > 0 && len(docs) > options.LimitN {
		docs = docs[:options.LimitN]
	}
	return docs, nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string, filters []Filter) (<-chan []Doc, func()) {
	sub := &memorySub{
		collection: collection,
		filters:    filters,
		ch:         make(chan []Doc, 16),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	sub.push(s.collect(collection, filters))
	s.mu.Unlock()

	// Pushes only happen while the store lock is held, so closing under the
	// same lock cannot race a send.
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			for i, existing := range s.subs {
				if existing == sub {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					break
				}
			}
			close(sub.done)
			close(sub.ch)
			s.mu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-sub.done:
		}
	}()

	return sub.ch, cancel
}

func (sub *memorySub) push(docs []Doc) {
	select {
	case <-sub.done:
	case sub.ch <- docs:
	default:
	}
}

// notify re-evaluates every subscription against the current state.
func (s *MemoryStore) notify() {
	s.mu.RLock()
	for _, sub := range s.subs {
		sub.push(s.collect(sub.collection, sub.filters))
	}
	s.mu.RUnlock()
}

// collect gathers the documents directly inside a collection path. Documents
// of nested subcollections have extra path segments and are excluded.
func (s *MemoryStore) collect(collection string, filters []Filter) []Doc {
	prefix := collection + "/"
	var out []Doc
	for path, doc := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		id := strings.TrimPrefix(path, prefix)
		if strings.Contains(id, "/") {
			continue
		}
		if matchesAll(doc, filters) {
			out = append(out, Doc{ID: id, Data: cloneDoc(doc)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchesAll(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		cmp := compareValues(doc[f.Field], f.Value)
		switch f.Op {
		case "==":
			if cmp != 0 {
				return false
			}
		case ">=":
			if cmp < 0 {
				return false
			}
		case "<=":
			if cmp > 0 {
				return false
			}
		case ">":
			if cmp <= 0 {
				return false
			}
		case "<":
			if cmp >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders two loosely typed field values. Mismatched kinds
// compare as unequal and sort after.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	default:
		an, aok := toFloat(a)
		bn, bok := toFloat(b)
		if aok && bok {
			switch {
			case an == bn:
				return 0
			case an < bn:
				return -1
			default:
				return 1
			}
		}
	}
	return 1
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// setField writes one field, resolving dotted paths into nested maps and
// applying increment markers against the existing value.
func setField(doc map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	target := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := target[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			target[part] = next
		}
		target = next
	}

	leaf := parts[len(parts)-1]
	if inc, ok := value.(incrementValue); ok {
		current, _ := toFloat(target[leaf])
		target[leaf] = int(current) + inc.Delta
		return
	}
	target[leaf] = value
}

func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		if nested, ok := value.(map[string]any); ok {
			out[key] = cloneDoc(nested)
			continue
		}
		out[key] = value
	}
	return out
}
