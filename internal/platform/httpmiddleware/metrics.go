package httpmiddleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"linkapi.local/internal/platform/metrics"
)

// Metrics records request totals, latency and in-flight count. The
// route label uses the matched pattern (c.FullPath), not the raw path,
// so /api/links/42 and /api/links/43 share one series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPInflightRequests.Inc()
		defer metrics.HTTPInflightRequests.Dec()

		route := c.FullPath()
		if route == "" {
			route = "UNMATCHED"
		}
		defer func() {
			duration := time.Since(start).Seconds()
			status := c.Writer.Status()
			metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDurationSeconds.WithLabelValues(c.Request.Method, route).Observe(duration)
		}()
		c.Next()
	}
}
