package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/hostutil"
)

// CanonicalRedirect permanently redirects requests that arrived on a host
// other than canonicalHost, or over plain HTTP when forceHTTPS is set. The
// redirect keeps the path and query. Local development hosts pass through.
func CanonicalRedirect(canonicalHost string, forceHTTPS bool) gin.HandlerFunc {
	canonicalHost = strings.TrimSpace(canonicalHost)
	return func(c *gin.Context) {
		host := c.Request.Host
		if hostutil.IsLocal(host) || (canonicalHost == "" && !forceHTTPS) {
			c.Next()
			return
		}

		wrongHost := canonicalHost != "" && !hostutil.IsCanonical(host, canonicalHost)
		insecure := forceHTTPS && RequestScheme(c) != "https"
		if !wrongHost && !insecure {
			c.Next()
			return
		}

		target := host
		if canonicalHost != "" {
			target = canonicalHost
		}
		scheme := "https"
		if !forceHTTPS {
			scheme = RequestScheme(c)
		}
		c.Redirect(http.StatusMovedPermanently, scheme+"://"+target+c.Request.URL.RequestURI())
		c.Abort()
	}
}
