// Package validation wraps the shared validator instance used by request handlers.
package validation

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
	})
	return v
}

// IsEmail reports whether s is a syntactically valid address.
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return Validator().Var(s, "required,email") == nil
}

// IsURL accepts absolute http(s) URLs only.
func IsURL(s string) bool {
	if s == "" {
		return false
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	return Validator().Var(s, "url") == nil
}

// Struct validates the `validate` tags of s.
func Struct(s any) error {
	return Validator().Struct(s)
}
