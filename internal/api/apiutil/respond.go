// Package apiutil holds the request plumbing shared by the API handlers.
package apiutil

import (
	"errors"
	"net/http"

	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
	KeyEmail  = "email"
	KeyName   = "name"
)

// ActorFrom returns the signed-in user, or the zero Actor for anonymous requests.
func ActorFrom(c *gin.Context) access.Actor {
	return access.Actor{
		ID:   c.GetString(KeyUserID),
		Role: access.Role(c.GetString(KeyRole)),
	}
}

// MustActor writes 401 and reports false when nobody is signed in.
func MustActor(c *gin.Context) (access.Actor, bool) {
	a := ActorFrom(c)
	if !a.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return a, false
	}
	return a, true
}

func Forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// RespondError maps store and domain errors onto status codes. Anything
// unrecognised is a 500 carrying the error text.
func RespondError(c *gin.Context, err error, entity string) {
	var te *content.TransitionError
	var fe *FieldError
	switch {
	case errors.As(err, &te):
		c.JSON(http.StatusBadRequest, gin.H{"error": te.Error()})
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, gin.H{"error": fe.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	case errors.Is(err, store.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
