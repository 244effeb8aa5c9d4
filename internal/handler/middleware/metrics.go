package middleware

import (
	"strconv"
	"time"

	"gin-checkout-core/internal/pkg/telemetry"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware labels by route template so token and id path params do
// not explode the label space.
func MetricsMiddleware(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}
