package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests gin could not route, so scanners probing
// random paths do not grow the label set.
const unmatchedRoute = "unmatched"

var (
	httpDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "roombook_http_duration_seconds",
			Help: "Duration of HTTP requests by route template.",
		},
		[]string{"path", "method", "status"},
	)
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roombook_http_in_flight_requests",
		Help: "Requests currently being served.",
	})
)

func HttpMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		httpDuration.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
