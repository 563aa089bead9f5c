package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/response"
)

// RateLimit limits requests per client IP within a fixed window. Counters are
// namespaced by scope so separate route groups keep independent budgets.
// API routes are answered with the JSON envelope, other routes with plain text.
// Store failures let the request through.
func RateLimit(store RateStore, scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + scope + ":" + c.ClientIP()
		count, ttl, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			logger.WithModule("http").Warn("rate limit store unavailable",
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if ttl <= 0 {
			ttl = window
		}
		resetIn := int(math.Ceil(ttl.Seconds()))

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, maxRequests-count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetIn))

		if count > maxRequests {
			c.Header("Retry-After", strconv.Itoa(resetIn))
			if IsAPIRequest(c) {
				response.ErrorWith(c, appErrors.ErrRateLimit, gin.H{"retry_after": resetIn})
			} else {
				c.String(http.StatusTooManyRequests, "Too Many Requests")
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
