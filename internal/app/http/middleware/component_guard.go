package middleware

import (
	"net/http"

	"newsdesk/internal/domain/site"
	"newsdesk/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequireComponent answers 404 while the feature is switched off in component settings.
func RequireComponent(components *settings.Store, feature string, log zerolog.Logger) gin.HandlerFunc {
	def, _ := site.DefaultComponentSettings(feature)
	return func(c *gin.Context) {
		cfg, err := settings.Load(c.Request.Context(), components, feature, def)
		if err != nil {
			log.Error().Err(err).Str("feature", feature).Msg("loading component settings")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Feature disabled"})
			return
		}
		c.Next()
	}
}
