package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/users"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Accounts resolves a token's subject to the stored user.
type Accounts interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token. With accounts set,
// the stored user decides role and access, so a demotion or a disabled flag applies
// to tokens already issued.
func AuthMiddleware(secret []byte, accounts Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		if !authenticate(c, secret, accounts, authHeader) {
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the actor when a token is sent and lets anonymous requests through.
// A token that is present but invalid is still rejected.
func OptionalAuth(secret []byte, accounts Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(secret) == 0 {
			c.Next()
			return
		}
		if !authenticate(c, secret, accounts, authHeader) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, secret []byte, accounts Accounts, authHeader string) bool {
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
		return false
	}

	token, err := jwt.Parse(strings.TrimSpace(tokenString), func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return false
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return false
	}
	if accounts == nil {
		c.Set(apiutil.KeyUserID, userID)
		for _, key := range []string{apiutil.KeyEmail, apiutil.KeyRole, apiutil.KeyName} {
			if v, ok := claims[key].(string); ok {
				c.Set(key, v)
			}
		}
		return true
	}

	u, err := accounts.GetByID(c.Request.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
		return false
	}
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load account"})
		return false
	}
	if u.Disabled {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account disabled"})
		return false
	}
	c.Set(apiutil.KeyUserID, u.ID)
	c.Set(apiutil.KeyEmail, u.Email)
	c.Set(apiutil.KeyRole, u.Role)
	c.Set(apiutil.KeyName, u.DisplayName)
	return true
}

// RequireRole lets through only the listed roles.
func RequireRole(roles ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(apiutil.KeyRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}
		role, _ := value.(string)
		for _, r := range roles {
			if access.Role(role) == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
}

// RequireCapability needs c for at least the actor's own records; handlers narrow further.
func RequireCapability(capability access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := apiutil.ActorFrom(c)
		if !actor.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !access.Can(actor, capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}
