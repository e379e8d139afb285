package middleware

import (
	"net/http"
	"strings"

	"licenseplatform/services/api-gateway/internal/security"

	"github.com/gin-gonic/gin"
)

const APIKeyHeader = "X-Api-Key"

// SupportAuth requires a Bearer support token and stores its subject as
// "supportUser" on the context.
func SupportAuth(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		subject, err := tokens.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("supportUser", subject)
		c.Next()
	}
}

// APIKeyAuth checks X-Api-Key against keyHash. An empty keyHash disables
// the check.
func APIKeyAuth(hasher *security.APIKeyHasher, keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.Next()
			return
		}

		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key is required"})
			return
		}
		if err := hasher.Compare(keyHash, key); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		c.Next()
	}
}
