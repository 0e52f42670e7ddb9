package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/metrics"
	"github.com/youthlift/backoffice/internal/ratelimit"
)

// RateLimitMiddleware throttles requests per client IP under the given
// policy. Denials return 429 with a retry hint, are counted and produce a
// security audit record.
func RateLimitMiddleware(limiter *ratelimit.Limiter, class string, policy ratelimit.Policy, recorder *audit.Recorder, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := class + ":" + c.ClientIP()
		result := limiter.Check(key, policy)

		c.Header("X-RateLimit-Limit", strconv.Itoa(policy.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if result.Allowed {
			c.Next()
			return
		}

		retrySeconds := int(result.RetryAfter.Seconds())
		if retrySeconds < 1 {
			retrySeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retrySeconds))

		if m != nil {
			m.RateLimitDeniedTotal.WithLabelValues(class).Inc()
		}
		if recorder != nil {
			recorder.RecordSecurityEvent(
				audit.ActionRateLimitExceeded,
				class,
				audit.AnonymousActor(),
				audit.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent(), Path: c.Request.URL.Path},
				fmt.Sprintf("rate limit exceeded: %d requests per %s", policy.MaxRequests, policy.Window),
			)
		}

		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":               "too many requests",
			"retry_after_seconds": retrySeconds,
		})
	}
}

// MetricsMiddleware counts requests by method, route template and status.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
