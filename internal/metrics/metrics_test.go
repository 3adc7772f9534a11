package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIndependent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.IncrementFailures("join")
	a.CacheLookup("static", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FailuresTotal.WithLabelValues("join")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheLookups.WithLabelValues("static", "true")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FailuresTotal.WithLabelValues("join")))
}

func TestObserveReportAndHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveReport(4, 1, 75)
	m.IncrementExports("xlsx")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "arcaudit_compliance_percent 75")
	assert.Contains(t, body, `arcaudit_exports_total{format="xlsx"} 1`)
	assert.Contains(t, body, "arcaudit_reports_total 1")
}
