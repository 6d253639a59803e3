package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Total number of outbound messages sent per channel",
		},
		[]string{"channel"},
	)

	sendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "send_failures_total",
			Help: "Total number of failed outbound sends per channel",
		},
		[]string{"channel"},
	)

	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads created per source",
		},
		[]string{"source"},
	)
)

// HTTPMiddleware records request counts and latencies per route.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordSend(channel string) {
	messagesSent.WithLabelValues(channel).Inc()
}

func RecordSendFailure(channel string) {
	sendFailures.WithLabelValues(channel).Inc()
}

// AddSends records n sends at once, for batch dispatch reports.
func AddSends(channel string, n int) {
	messagesSent.WithLabelValues(channel).Add(float64(n))
}

func AddSendFailures(channel string, n int) {
	sendFailures.WithLabelValues(channel).Add(float64(n))
}

func RecordLeadCreated(source string) {
	leadsCreated.WithLabelValues(source).Inc()
}
