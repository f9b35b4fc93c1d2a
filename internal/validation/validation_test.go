package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@b.com"))
	assert.True(t, IsEmail(" reader@example.org "))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail(""))
	assert.False(t, IsEmail("a@"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/x.png"))
	assert.False(t, IsURL("javascript:alert(1)"))
	assert.False(t, IsURL("example.com"))
	assert.False(t, IsURL(""))
}

func TestStruct(t *testing.T) {
	type in struct {
		Email string `validate:"required,email"`
	}
	assert.NoError(t, Struct(in{Email: "a@b.com"}))
	assert.Error(t, Struct(in{Email: "nope"}))
}
