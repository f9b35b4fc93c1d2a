package menus

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"newsdesk/internal/store"
)

// MaxDepth bounds nesting; the top level counts as one.
const MaxDepth = 3

var ErrInvalidItem = errors.New("invalid menu item")

type Item struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	Order    int    `json:"order"`
	External bool   `json:"external,omitempty"`
	Children []Item `json:"children,omitempty"`
}

type Menu struct {
	store.Base
	Name     string `gorm:"not null" json:"name"`
	Location string `gorm:"index" json:"location"`
	Items    []Item `gorm:"serializer:json;type:jsonb" json:"items"`
}

func (Menu) TableName() string { return "menus" }

// NormalizeItems trims labels, orders every level by Order and flags absolute links as external.
func NormalizeItems(items []Item) ([]Item, error) {
	return normalize(items, 1)
}

func normalize(items []Item, depth int) ([]Item, error) {
	if len(items) == 0 {
		return []Item{}, nil
	}
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: nested deeper than %d levels", ErrInvalidItem, MaxDepth)
	}
	out := make([]Item, len(items))
	for i, it := range items {
		it.Label = strings.TrimSpace(it.Label)
		it.URL = strings.TrimSpace(it.URL)
		if it.Label == "" {
			return nil, fmt.Errorf("%w: label is required", ErrInvalidItem)
		}
		switch {
		case strings.HasPrefix(it.URL, "/") || strings.HasPrefix(it.URL, "#"):
			it.External = false
		case strings.HasPrefix(it.URL, "http://") || strings.HasPrefix(it.URL, "https://"):
			it.External = true
		case it.URL == "" && len(it.Children) > 0:
		default:
			return nil, fmt.Errorf("%w: %q has an unsupported url", ErrInvalidItem, it.Label)
		}
		children, err := normalize(it.Children, depth+1)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			children = nil
		}
		it.Children = children
		out[i] = it
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Order < out[b].Order })
	return out, nil
}
