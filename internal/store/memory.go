package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Memory keeps records as decoded JSON objects in insertion order.
// Field names are the struct's JSON keys, which match the gorm column names.
type Memory[T any] struct {
	mu     sync.Mutex
	name   string
	fields map[string]bool
	ids    []string
	docs   map[string]map[string]any

	Now func() time.Time
}

var _ Collection[struct{ Base }] = (*Memory[struct{ Base }])(nil)

func NewMemory[T any](name string) *Memory[T] {
	return &Memory[T]{
		name:   name,
		fields: jsonFieldNames(reflect.TypeOf((*T)(nil)).Elem()),
		docs:   map[string]map[string]any{},
		Now:    time.Now,
	}
}

func (m *Memory[T]) Name() string { return m.name }

func (m *Memory[T]) known(field string) bool { return m.fields[field] }

func (m *Memory[T]) now() time.Time { return normalizeTime(m.Now()) }

func (m *Memory[T]) List(ctx context.Context, q Query) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, err := m.query(q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		doc, err := decodeRecord[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (m *Memory[T]) Count(ctx context.Context, q Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q.Limit, q.Offset = 0, 0
	recs, err := m.query(q)
	if err != nil {
		return 0, err
	}
	return int64(len(recs)), nil
}

func (m *Memory[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	docs, err := m.List(ctx, q.Take(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (m *Memory[T]) GetByID(ctx context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return decodeRecord[T](rec)
}

func (m *Memory[T]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	return m.FindOne(ctx, Query{}.Where("slug", Eq, slug))
}

func (m *Memory[T]) Create(ctx context.Context, doc *T) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := prepareCreate(doc, m.now())
	if err != nil {
		return "", err
	}
	if _, exists := m.docs[id]; exists {
		return "", fmt.Errorf("%w: duplicate id %q in %s", ErrInvalid, id, m.name)
	}
	rec, err := encodeRecord(doc)
	if err != nil {
		return "", err
	}
	m.docs[id] = rec
	m.ids = append(m.ids, id)
	return id, nil
}

func (m *Memory[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	next := make(map[string]any, len(rec))
	for k, v := range rec {
		next[k] = v
	}
	for k, v := range fields {
		if !m.known(k) || k == "id" || k == "created_at" {
			return fmt.Errorf("%w: field %q cannot be updated", ErrInvalid, k)
		}
		jv, err := jsonValue(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, k, err)
		}
		next[k] = jv
	}
	stamp, _ := jsonValue(m.now())
	next["updated_at"] = stamp

	// The merged record must still decode into T.
	if _, err := decodeRecord[T](next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	m.docs[id] = next
	return nil
}

func (m *Memory[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	m.remove(id)
	return nil
}

func (m *Memory[T]) DeleteMany(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids = uniqueIDs(ids)
	for _, id := range ids {
		if _, ok := m.docs[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	for _, id := range ids {
		m.remove(id)
	}
	return nil
}

func (m *Memory[T]) Increment(ctx context.Context, id, field string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.known(field) {
		return fmt.Errorf("%w: unknown field %q", ErrInvalid, field)
	}
	rec, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	var cur float64
	switch v := rec[field].(type) {
	case nil:
	case float64:
		cur = v
	default:
		return fmt.Errorf("%w: %q is not numeric", ErrInvalid, field)
	}
	rec[field] = cur + float64(delta)
	return nil
}

func (m *Memory[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	doc, err := decodeRecord[T](rec)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	stampUpdated(doc, m.now())
	next, err := encodeRecord(doc)
	if err != nil {
		return nil, err
	}
	next["id"] = id
	m.docs[id] = next
	return decodeRecord[T](next)
}

func (m *Memory[T]) remove(id string) {
	delete(m.docs, id)
	for i, existing := range m.ids {
		if existing == id {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
}

// query must be called with m.mu held.
func (m *Memory[T]) query(q Query) ([]map[string]any, error) {
	if err := q.check(m.known); err != nil {
		return nil, err
	}
	filters := make([]Filter, len(q.Filters))
	for i, f := range q.Filters {
		jv, err := jsonValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, f.Field, err)
		}
		filters[i] = Filter{Field: f.Field, Op: f.Op, Value: jv}
	}

	var out []map[string]any
	for _, id := range m.ids {
		rec := m.docs[id]
		if matchesAll(rec, filters) {
			out = append(out, rec)
		}
	}

	if len(q.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Order {
				c := orderValues(out[i][o.Field], out[j][o.Field])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matchesAll(rec map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matches(rec[f.Field], f) {
			return false
		}
	}
	return true
}

func matches(v any, f Filter) bool {
	switch f.Op {
	case Eq:
		return valuesEqual(v, f.Value)
	case Ne:
		return v != nil && !valuesEqual(v, f.Value)
	case Lt, Lte, Gt, Gte:
		c, ok := compareValues(v, f.Value)
		if !ok {
			return false
		}
		switch f.Op {
		case Lt:
			return c < 0
		case Lte:
			return c <= 0
		case Gt:
			return c > 0
		}
		return c >= 0
	case In:
		candidates, _ := f.Value.([]any)
		for _, cand := range candidates {
			if valuesEqual(v, cand) {
				return true
			}
		}
	case Contains:
		items, _ := v.([]any)
		for _, item := range items {
			if valuesEqual(item, f.Value) {
				return true
			}
		}
	}
	return false
}

// orderValues sorts nulls after every value, as postgres does for ascending order.
func orderValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c, _ := compareValues(a, b)
	return c
}

func encodeRecord[T any](doc *T) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeRecord[T any](rec map[string]any) (*T, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	doc := new(T)
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
