package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the per-route request metrics of one engine.
//   - http_requests_total: requests by route template, method and status
//   - http_request_duration_seconds: latency by route template and method
//   - routes_registered: routes registered from module declarations
type Recorder struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	routes   prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
			[]string{"path", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency by route and method.", Buckets: prometheus.DefBuckets},
			[]string{"path", "method"},
		),
		routes: prometheus.NewGauge(prometheus.GaugeOpts{Name: "routes_registered", Help: "Routes registered from module declarations."}),
	}
	r.registry.MustRegister(r.requests, r.latency, r.routes)
	return r
}

// Handler returns the middleware recording request count and latency.
func (r *Recorder) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.latency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
		r.requests.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RouteRegistered counts a route registered on the engine.
func (r *Recorder) RouteRegistered() {
	r.routes.Inc()
}

// Exposer returns the Prometheus scrape handler for this recorder.
func (r *Recorder) Exposer() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
