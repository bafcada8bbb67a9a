// api/middleware/security_headers.go
package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders sets the response headers the access gate's threat
// model assumes on every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-Frame-Options", "DENY")
		header.Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
