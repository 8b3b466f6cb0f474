package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaultsentry/vaultsentry/internal/remediation"
	"github.com/vaultsentry/vaultsentry/internal/threat"
)

var (
	vsAssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultsentry_assessments_total",
		Help: "Total assessments completed, by resulting threat level.",
	}, []string{"level"})

	vsActionsSelectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultsentry_actions_selected_total",
		Help: "Total protective actions selected, by action.",
	}, []string{"action"})

	vsAssessmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vaultsentry_assessment_duration_seconds",
		Help:    "End-to-end assessment duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	vsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultsentry_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	vsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vaultsentry_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// EngineMetrics adapts the Prometheus collectors to the engine's metrics
// hook.
type EngineMetrics struct{}

// AssessmentCompleted implements engine.Metrics.
func (EngineMetrics) AssessmentCompleted(level threat.GranularThreatLevel, action remediation.ProtectiveAction, duration time.Duration) {
	vsAssessmentsTotal.WithLabelValues(level.String()).Inc()
	vsActionsSelectedTotal.WithLabelValues(string(action)).Inc()
	vsAssessmentDuration.Observe(duration.Seconds())
}

// PrometheusMiddleware returns a Gin middleware that records per-request
// metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		vsRequestsTotal.WithLabelValues(method, path, status).Inc()
		vsRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
