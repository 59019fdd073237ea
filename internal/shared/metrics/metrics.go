package metrics

import (
	"net/http"
	"strconv"
	"time"

	"timetrack/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry   *prometheus.Registry
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec
	clockEvts  *prometheus.CounterVec
	vacEvts    *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "http_requests_total",
		}, []string{"method", "route", "status"}),
		httpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets,
		}, []string{"method", "route", "status"}),
		httpInfl: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns, Name: "http_requests_inflight",
		}, []string{"route"}),
		clockEvts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "clock_events_total",
		}, []string{"kind"}),
		vacEvts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "vacation_transitions_total",
		}, []string{"status"}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.httpInfl, m.clockEvts, m.vacEvts)
	return m
}

// Middleware records count, latency and in-flight gauge per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

// ClockEvent counts clock_in / clock_out.
func (m *Metrics) ClockEvent(kind string) {
	if m == nil {
		return
	}
	m.clockEvts.WithLabelValues(kind).Inc()
}

// VacationTransition counts vacation requests entering status.
func (m *Metrics) VacationTransition(status string) {
	if m == nil {
		return
	}
	m.vacEvts.WithLabelValues(status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
