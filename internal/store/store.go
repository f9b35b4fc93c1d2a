// Package store provides the typed collection accessor every content type is
// persisted through, backed by gorm in production and by an in-process map in tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrInvalid  = errors.New("invalid query")
)

// Base is embedded by every stored document.
type Base struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) DocID() string { return b.ID }

func (b *Base) SetDocID(id string) { b.ID = id }

func (b *Base) StampCreated(t time.Time) { b.CreatedAt, b.UpdatedAt = t, t }

func (b *Base) StampUpdated(t time.Time) { b.UpdatedAt = t }

// Document is satisfied by any pointer to a struct embedding Base.
type Document interface {
	DocID() string
	SetDocID(id string)
	StampCreated(t time.Time)
	StampUpdated(t time.Time)
}

// CounterResetter is implemented by documents carrying denormalized counters.
// Create zeroes them regardless of the input.
type CounterResetter interface {
	ResetCounters()
}

type Collection[T any] interface {
	Name() string
	List(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, q Query) (int64, error)
	FindOne(ctx context.Context, q Query) (*T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	// GetBySlug returns the first match in store default order.
	GetBySlug(ctx context.Context, slug string) (*T, error)
	Create(ctx context.Context, doc *T) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	// DeleteMany removes every id or none of them.
	DeleteMany(ctx context.Context, ids []string) error
	Increment(ctx context.Context, id, field string, delta int64) error
	// Mutate applies fn to the current record under a lock and saves the result.
	Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error)
}

// prepareCreate assigns an id when missing, stamps both timestamps and zeroes counters.
func prepareCreate[T any](doc *T, now time.Time) (string, error) {
	d, ok := any(doc).(Document)
	if !ok {
		return "", errors.New("store: document type does not embed store.Base")
	}
	if d.DocID() == "" {
		d.SetDocID(uuid.NewString())
	}
	d.StampCreated(now)
	if r, ok := any(doc).(CounterResetter); ok {
		r.ResetCounters()
	}
	return d.DocID(), nil
}

func stampUpdated[T any](doc *T, now time.Time) {
	if d, ok := any(doc).(Document); ok {
		d.StampUpdated(now)
	}
}

// Timestamps are kept in UTC at microsecond precision so both backends agree.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
