// Package settings stores singleton configuration documents that fall back to
// in-code defaults when nothing has been saved yet.
package settings

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"newsdesk/internal/oops"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SiteTable      = "settings"
	ComponentTable = "component_settings"
)

// KV holds raw JSON documents by key.
type KV interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	Keys(ctx context.Context) ([]string, error)
}

// Entry is one row of a settings table.
type Entry struct {
	Key       string          `gorm:"primaryKey" json:"key"`
	Value     json.RawMessage `gorm:"type:jsonb;not null" json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type SQLKV struct {
	db    *gorm.DB
	table string
}

func NewSQLKV(db *gorm.DB, table string) *SQLKV {
	return &SQLKV{db: db, table: table}
}

// Migrate creates the backing table.
func (s *SQLKV) Migrate() error {
	return s.db.Table(s.table).AutoMigrate(&Entry{})
}

func (s *SQLKV) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var rows []Entry
	err := s.db.WithContext(ctx).Table(s.table).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		Limit(1).Find(&rows).Error
	if err != nil {
		return nil, false, oops.New(err, "read %s/%s", s.table, key)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0].Value, true, nil
}

func (s *SQLKV) Put(ctx context.Context, key string, value json.RawMessage) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Table(s.table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return oops.New(err, "write %s/%s", s.table, key)
	}
	return nil
}

func (s *SQLKV) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Table(s.table).Order("key").Pluck("key", &keys).Error; err != nil {
		return nil, oops.New(err, "list %s", s.table)
	}
	return keys, nil
}

type MemoryKV struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{docs: map[string]json.RawMessage{}}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), v...), true, nil
}

func (m *MemoryKV) Put(ctx context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (m *MemoryKV) Keys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.docs))
	for k := range m.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Store reads and merges documents held in a KV.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns def overlaid with whatever is stored under key. The overlay is
// decoded into a copy, so slices and maps inside def are never written to.
func Load[T any](ctx context.Context, s *Store, key string, def T) (T, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	base, err := json.Marshal(def)
	if err != nil {
		return def, oops.New(err, "encode defaults for %q", key)
	}
	var out T
	if err := json.Unmarshal(base, &out); err != nil {
		return def, oops.New(err, "copy defaults for %q", key)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return def, oops.New(err, "decode settings %q", key)
	}
	return out, nil
}

// Update merges partial into the stored document. Nothing is validated.
func (s *Store) Update(ctx context.Context, key string, partial map[string]any) error {
	doc := map[string]any{}
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return oops.New(err, "decode settings %q", key)
		}
	}
	for k, v := range partial {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, key, merged)
}

// Replace overwrites the stored document with v.
func (s *Store) Replace(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, key, raw)
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.kv.Get(ctx, key)
	return ok, err
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.kv.Keys(ctx)
}

// Raw returns the stored document without defaults.
func (s *Store) Raw(ctx context.Context, key string) (map[string]any, bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, true, oops.New(err, "decode settings %q", key)
	}
	return doc, true, nil
}
