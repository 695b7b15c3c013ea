package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics exposed on /metrics
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	calculationsTotal *prometheus.CounterVec
	drinkCost         *prometheus.HistogramVec
	catalogSynced     *prometheus.CounterVec
}

// NewMetrics builds a private registry with the HTTP and costing metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pourcost_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pourcost_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pourcost_cost_calculations_total",
		Help: "Drink cost calculations by cost option and outcome.",
	}, []string{"option", "outcome"})
	cost := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pourcost_drink_cost_dollars",
		Help:    "Total cost of calculated drinks.",
		Buckets: []float64{0.5, 1, 2, 3, 5, 8, 13, 20},
	}, []string{"option"})
	synced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pourcost_catalog_products_total",
		Help: "Catalog feed products processed by result.",
	}, []string{"result"})
	registry.MustRegister(requests, duration, calculations, cost, synced)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		calculationsTotal: calculations,
		drinkCost:         cost,
		catalogSynced:     synced,
	}
}

// Handler returns the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveCalculation records one cost calculation. totalCost is only
// observed for successful runs.
func (m *Metrics) ObserveCalculation(option string, totalCost float64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.calculationsTotal.WithLabelValues(option, "error").Inc()
		return
	}
	m.calculationsTotal.WithLabelValues(option, "ok").Inc()
	m.drinkCost.WithLabelValues(option).Observe(totalCost)
}

// ObserveCatalogSync adds the per-result counts of one feed import
func (m *Metrics) ObserveCatalogSync(upserted, unchanged, skipped, failed int) {
	if m == nil {
		return
	}
	m.catalogSynced.WithLabelValues("upserted").Add(float64(upserted))
	m.catalogSynced.WithLabelValues("unchanged").Add(float64(unchanged))
	m.catalogSynced.WithLabelValues("skipped").Add(float64(skipped))
	m.catalogSynced.WithLabelValues("failed").Add(float64(failed))
}

// RegisterDBStats exports connection pool gauges for db, labelled with name
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) error {
	if m == nil || db == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}
