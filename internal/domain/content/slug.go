package content

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSlug generates a URL-safe slug from a title.
// Example: "Harbor Festival: Day 2!" -> "harbor-festival-day-2"
func MakeSlug(title string) string {
	base := strings.ToLower(strings.TrimSpace(title))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if len(base) > 80 {
		base = strings.Trim(base[:80], "-")
	}
	if base == "" {
		base = "item-" + uuid.NewString()[:8]
	}
	return base
}

// SlugOr returns MakeSlug(slug) when given, otherwise a slug derived from title.
func SlugOr(slug, title string) string {
	if s := strings.TrimSpace(slug); s != "" {
		return MakeSlug(s)
	}
	return MakeSlug(title)
}
