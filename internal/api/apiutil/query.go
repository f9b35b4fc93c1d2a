package apiutil

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Limit reads ?limit=, clamped to [1, MaxLimit].
func Limit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

func Offset(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("offset"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// IDsRequest is the body of the bulk-delete endpoints.
type IDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// Page is the envelope list endpoints respond with.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// RespondList writes 200 with items, never as JSON null.
func RespondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Page[T]{Items: items, Total: len(items)})
}
