package middleware

import (
	"net/http"
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery logs panics with a stack trace and answers 500.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.LogPanicValue(log.With().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Logger(), r, "request panicked")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
		}()
		c.Next()
	}
}

// RequestLogger writes one line per request, warn for 4xx and error for 5xx.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}
		if uid := c.GetString(apiutil.KeyUserID); uid != "" {
			event = event.Str("user_id", uid)
		}
		if err := c.Errors.Last(); err != nil {
			event = event.Stack().Err(err.Err)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request completed")
	}
}
