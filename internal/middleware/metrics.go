package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velvetdesk/agencyops-backend/internal/observability"
)

// Observe records request count, latency and inflight gauge per route.
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !observability.Enabled() {
			c.Next()
			return
		}
		m := observability.Current()
		m.APIInflight.Inc()
		start := time.Now()
		c.Next()
		m.APIInflight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.APIRequests.Inc(route, c.Request.Method, strconv.Itoa(c.Writer.Status()))
		m.APILatency.Observe(time.Since(start).Seconds(), route)
	}
}
