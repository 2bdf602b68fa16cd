package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Recorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordStateSave(OutcomeSaved)
	m.RecordStateSave(OutcomeSaved)
	m.RecordStateSave(OutcomeInconsistent)
	m.RecordViolation("collidingPositions")
	m.IncCorruptReads()
	m.SetCorruptStates(3)
	m.IncOSNameRegistered()
	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()

	assert.Equal(t, 2.0, promtest.ToFloat64(m.StateSaves.WithLabelValues(OutcomeSaved)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.StateSaves.WithLabelValues(OutcomeInconsistent)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ValidationFailures.WithLabelValues("collidingPositions")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.CorruptReads))
	assert.Equal(t, 3.0, promtest.ToFloat64(m.CorruptStates))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.OSNameRegistered))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.WSConnections))
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordStateSave(OutcomeSaved)
		m.RecordViolation("duplicateIds")
		m.IncCorruptReads()
		m.SetCorruptStates(1)
		m.IncOSNameRegistered()
		m.IncWSConnections()
		m.DecWSConnections()
	})
}

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	e := echo.New()
	e.Use(Middleware(m))
	e.GET("/api/v1/desktops/:osName", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", Handler(reg))

	for _, name := range []string{"alice", "bob"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/desktops/"+name, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, promtest.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/desktops/:osName", "200")))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "osdesk_http_requests_total"))
}
