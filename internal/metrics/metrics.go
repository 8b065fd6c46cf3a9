package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	orderOperations     *prometheus.CounterVec
	catalogFallbacks    prometheus.Counter
}

func New(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shivgems_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shivgems_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		orderOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shivgems_order_operations_total",
				Help: "Total number of order operations",
			},
			[]string{"operation", "status"},
		),
		catalogFallbacks: f.NewCounter(
			prometheus.CounterOpts{
				Name: "shivgems_catalog_fallback_total",
				Help: "Catalog reads answered with sample products",
			},
		),
	}
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			code := strconv.Itoa(status)

			m.httpRequestsTotal.WithLabelValues(c.Request().Method, path, code).Inc()
			m.httpRequestDuration.WithLabelValues(c.Request().Method, path, code).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) RecordOrderOperation(operation string, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.orderOperations.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) RecordCatalogFallback() {
	if m == nil {
		return
	}
	m.catalogFallbacks.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
