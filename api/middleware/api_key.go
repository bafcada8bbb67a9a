// api/middleware/api_key.go
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader is the request header carrying the integration key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth validates the X-API-Key header against the expected key.
// It runs after the IP allow-list and before any route logic; a failing
// request never reaches a handler. Presented and expected keys are
// compared as SHA-256 digests under constant time, so neither the key
// bytes nor the key length leak through timing.
func APIKeyAuth(required bool, expectedKey string) gin.HandlerFunc {
	expectedDigest := sha256.Sum256([]byte(expectedKey))

	return func(c *gin.Context) {
		if exemptPath(c.Request.URL.Path) || !required {
			c.Next()
			return
		}

		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			customLog.Warnf("APIKeyAuth: Request without API key from %s to %s", clientIP(c), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized.ApiKey",
				"message": "Missing or invalid API key",
			})
			return
		}

		presentedDigest := sha256.Sum256([]byte(key))
		if subtle.ConstantTimeCompare(presentedDigest[:], expectedDigest[:]) != 1 {
			customLog.Warnf("APIKeyAuth: Request with invalid API key from %s to %s", clientIP(c), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized.ApiKey",
				"message": "Missing or invalid API key",
			})
			return
		}

		c.Next()
	}
}
