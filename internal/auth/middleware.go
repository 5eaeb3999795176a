package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studyquiz/internal/logger"
)

// Middleware attaches a Session to every request. A missing bearer token
// yields an anonymous session; a present but invalid one is rejected.
func Middleware(tokens *Tokens, log *logger.Logger) gin.HandlerFunc {
	log = log.With("middleware", "auth")
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.Request = c.Request.WithContext(WithSession(c.Request.Context(), Session{}))
			c.Next()
			return
		}
		s, err := tokens.Verify(raw)
		if err != nil {
			log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// RequireUser rejects anonymous sessions
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if FromContext(c.Request.Context()).Anonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
