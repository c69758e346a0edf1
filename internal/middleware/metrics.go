package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/mem-bank/pkg/metricspkg"
)

// Metrics records per-request Prometheus metrics. The route template is
// used as the path label to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metricspkg.IncHTTPInFlight()
		defer metricspkg.DecHTTPInFlight()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metricspkg.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
