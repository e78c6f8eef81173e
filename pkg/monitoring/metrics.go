package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ProctoringEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proctoring_events_total",
			Help: "Total number of proctoring events ingested",
		},
		[]string{"event_type", "severity"},
	)

	PlagiarismComparisons = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plagiarism_pair_comparisons_total",
			Help: "Total number of attempt pairs compared by the plagiarism scanner",
		},
	)

	PlagiarismFlagsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plagiarism_flags_created_total",
			Help: "Total number of plagiarism flags created",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ProctoringEventCounter)
	prometheus.MustRegister(PlagiarismComparisons)
	prometheus.MustRegister(PlagiarismFlagsCreated)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
