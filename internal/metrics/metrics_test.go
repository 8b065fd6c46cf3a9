package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	m := New(prometheus.NewRegistry())

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/products/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/products/:id", "404")))
}

func TestRecordOrderOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordOrderOperation("create", true)
	m.RecordOrderOperation("create", false)
	m.RecordOrderOperation("create", true)
	m.RecordCatalogFallback()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.orderOperations.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderOperations.WithLabelValues("create", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogFallbacks))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordOrderOperation("create", true) })
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordOrderOperation("create", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shivgems_order_operations_total")
}
