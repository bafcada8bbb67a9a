// api/middleware/ip_allowlist.go
package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"querygate/config"
)

// exemptPath reports whether the access gate skips a request path: the
// health check, and the administrative prefix served by a separate process.
func exemptPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/admin")
}

// IPAllowlist enforces the configured IP allow-list ahead of any route
// logic. Entries are literal addresses, no ranges; unparseable entries
// are logged and skipped, never treated as wildcards. Loopback callers
// are permitted when the service itself listens only on loopback.
func IPAllowlist(listenAddr string, allowList []string) gin.HandlerFunc {
	allowed := make(map[netip.Addr]struct{}, len(allowList))
	for _, entry := range allowList {
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			customLog.Warnf("IPAllowlist: Invalid address in allow-list, skipping: %s", entry)
			continue
		}
		allowed[addr.Unmap()] = struct{}{}
	}

	allowLoopback := config.IsLoopbackListen(listenAddr)
	customLog.Printf("IPAllowlist: Initialized with %d addresses (loopback allowed: %v)", len(allowed), allowLoopback)

	return func(c *gin.Context) {
		if exemptPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		addr, err := netip.ParseAddr(clientIP(c))
		if err != nil {
			customLog.Warnf("IPAllowlist: Unable to determine client IP for %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden.IP",
				"message": "Unable to determine client IP address",
			})
			return
		}
		addr = addr.Unmap()

		if allowLoopback && addr.IsLoopback() {
			c.Next()
			return
		}

		if _, ok := allowed[addr]; !ok {
			customLog.Warnf("IPAllowlist: Blocked request from %s to %s", addr, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden.IP",
				"message": "Access denied from this IP address",
			})
			return
		}

		c.Next()
	}
}
