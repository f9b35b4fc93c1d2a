package store

import "fmt"

type Op string

const (
	Eq       Op = "=="
	Ne       Op = "!="
	Lt       Op = "<"
	Lte      Op = "<="
	Gt       Op = ">"
	Gte      Op = ">="
	In       Op = "in"
	Contains Op = "array-contains"
)

func (o Op) valid() bool {
	switch o {
	case Eq, Ne, Lt, Lte, Gt, Gte, In, Contains:
		return true
	}
	return false
}

type Filter struct {
	Field string
	Op    Op
	Value any
}

type Order struct {
	Field string
	Desc  bool
}

// Query is built by chaining; each step returns a copy.
//
//	store.Query{}.Where("status", store.Eq, "published").OrderBy("published_at", true).Take(10)
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
	Offset  int
}

func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) OrderBy(field string, desc bool) Query {
	q.Order = append(append([]Order(nil), q.Order...), Order{Field: field, Desc: desc})
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

func (q Query) Skip(n int) Query {
	q.Offset = n
	return q
}

// check rejects unknown fields and operators before anything reaches a backend.
func (q Query) check(known func(string) bool) error {
	for _, f := range q.Filters {
		if !known(f.Field) {
			return fmt.Errorf("%w: unknown field %q", ErrInvalid, f.Field)
		}
		if !f.Op.valid() {
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalid, f.Op)
		}
		if f.Op == In {
			if _, ok := toSlice(f.Value); !ok {
				return fmt.Errorf("%w: %q expects a list", ErrInvalid, f.Field)
			}
		}
	}
	for _, o := range q.Order {
		if !known(o.Field) {
			return fmt.Errorf("%w: unknown order field %q", ErrInvalid, o.Field)
		}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("%w: negative limit or offset", ErrInvalid)
	}
	return nil
}
