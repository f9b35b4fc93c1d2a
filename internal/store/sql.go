package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"newsdesk/internal/oops"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// SQL is the gorm-backed collection. Column names come from the parsed model
// schema and double as the allowed filter/order/update fields.
type SQL[T any] struct {
	db     *gorm.DB
	table  string
	fields map[string]*schema.Field

	Now func() time.Time
}

var schemaCache sync.Map

func NewSQL[T any](db *gorm.DB) (*SQL[T], error) {
	s, err := schema.Parse(new(T), &schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, oops.New(err, "parse schema")
	}
	fields := make(map[string]*schema.Field, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName != "" {
			fields[f.DBName] = f
		}
	}
	return &SQL[T]{db: db, table: s.Table, fields: fields, Now: time.Now}, nil
}

// MustSQL panics on schema errors; models are static so this only fails on programmer error.
func MustSQL[T any](db *gorm.DB) *SQL[T] {
	s, err := NewSQL[T](db)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *SQL[T]) Name() string { return s.table }

func (s *SQL[T]) known(field string) bool {
	_, ok := s.fields[field]
	return ok
}

func (s *SQL[T]) now() time.Time { return normalizeTime(s.Now()) }

func byID(id string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "id"}, Value: id}
}

func (s *SQL[T]) scoped(ctx context.Context, q Query) (*gorm.DB, error) {
	if err := q.check(s.known); err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Model(new(T))
	for _, f := range q.Filters {
		col := clause.Column{Name: f.Field}
		switch f.Op {
		case Eq:
			if f.Value == nil {
				tx = tx.Where(clause.Expr{SQL: "? IS NULL", Vars: []any{col}})
				continue
			}
			tx = tx.Where(clause.Eq{Column: col, Value: f.Value})
		case Ne:
			tx = tx.Where(clause.Neq{Column: col, Value: f.Value})
		case Lt:
			tx = tx.Where(clause.Lt{Column: col, Value: f.Value})
		case Lte:
			tx = tx.Where(clause.Lte{Column: col, Value: f.Value})
		case Gt:
			tx = tx.Where(clause.Gt{Column: col, Value: f.Value})
		case Gte:
			tx = tx.Where(clause.Gte{Column: col, Value: f.Value})
		case In:
			values, _ := toSlice(f.Value)
			if len(values) == 0 {
				tx = tx.Where("1 = 0")
				continue
			}
			tx = tx.Where(clause.IN{Column: col, Values: values})
		case Contains:
			raw, err := json.Marshal([]any{f.Value})
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
			}
			tx = tx.Where(clause.Expr{SQL: "? @> ?::jsonb", Vars: []any{col, string(raw)}})
		}
	}
	for _, o := range q.Order {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Field}, Desc: o.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	return tx, nil
}

func (s *SQL[T]) List(ctx context.Context, q Query) ([]T, error) {
	tx, err := s.scoped(ctx, q)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := tx.Find(&out).Error; err != nil {
		return nil, oops.New(err, "list %s", s.table)
	}
	return out, nil
}

func (s *SQL[T]) Count(ctx context.Context, q Query) (int64, error) {
	q.Limit, q.Offset, q.Order = 0, 0, nil
	tx, err := s.scoped(ctx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, oops.New(err, "count %s", s.table)
	}
	return n, nil
}

func (s *SQL[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	tx, err := s.scoped(ctx, q)
	if err != nil {
		return nil, err
	}
	doc := new(T)
	if err := tx.Take(doc).Error; err != nil {
		return nil, notFound(err)
	}
	return doc, nil
}

func (s *SQL[T]) GetByID(ctx context.Context, id string) (*T, error) {
	doc := new(T)
	if err := s.db.WithContext(ctx).Where(byID(id)).Take(doc).Error; err != nil {
		return nil, notFound(err)
	}
	return doc, nil
}

func (s *SQL[T]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	return s.FindOne(ctx, Query{}.Where("slug", Eq, slug))
}

func (s *SQL[T]) Create(ctx context.Context, doc *T) (string, error) {
	id, err := prepareCreate(doc, s.now())
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return "", oops.New(err, "create %s", s.table)
	}
	return id, nil
}

func (s *SQL[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		f, ok := s.fields[k]
		if !ok || k == "id" || k == "created_at" {
			return fmt.Errorf("%w: field %q cannot be updated", ErrInvalid, k)
		}
		if f.Serializer != nil && v != nil {
			raw, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, k, err)
			}
			v = string(raw)
		}
		values[k] = v
	}
	values["updated_at"] = s.now()

	res := s.db.WithContext(ctx).Model(new(T)).Where(byID(id)).Updates(values)
	if res.Error != nil {
		return oops.New(res.Error, "update %s", s.table)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL[T]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where(byID(id)).Delete(new(T))
	if res.Error != nil {
		return oops.New(res.Error, "delete %s", s.table)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL[T]) DeleteMany(ctx context.Context, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(clause.IN{Column: clause.Column{Name: "id"}, Values: values}).Delete(new(T))
		if res.Error != nil {
			return oops.New(res.Error, "delete %s", s.table)
		}
		if res.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("%w: %d of %d ids missing", ErrNotFound, int64(len(ids))-res.RowsAffected, len(ids))
		}
		return nil
	})
}

// Increment is a single UPDATE ... SET n = n + delta; it leaves updated_at alone.
func (s *SQL[T]) Increment(ctx context.Context, id, field string, delta int64) error {
	if !s.known(field) {
		return fmt.Errorf("%w: unknown field %q", ErrInvalid, field)
	}
	col := clause.Column{Name: field}
	res := s.db.WithContext(ctx).Model(new(T)).Where(byID(id)).
		UpdateColumn(field, gorm.Expr("COALESCE(?, 0) + ?", col, delta))
	if res.Error != nil {
		return oops.New(res.Error, "increment %s.%s", s.table, field)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	doc := new(T)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(byID(id)).Take(doc).Error; err != nil {
			return notFound(err)
		}
		if err := fn(doc); err != nil {
			return err
		}
		stampUpdated(doc, s.now())
		return tx.Save(doc).Error
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
