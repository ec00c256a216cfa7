package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/service"
)

// Metrics records method, route, status and latency for every request. A nil
// metrics service turns the middleware into a passthrough.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

// routeLabel prefers the registered route template so parameterized paths
// collapse into one series instead of one per ID.
func routeLabel(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return c.Request.URL.Path
}
