// Package metrics holds the Prometheus instruments for report runs.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the Prometheus metrics for the report service.
type Metrics struct {
	registry *prometheus.Registry

	LoadsTotal     prometheus.Counter
	ReportsTotal   prometheus.Counter
	FailuresTotal  *prometheus.CounterVec
	ExportsTotal   *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	Compliance     prometheus.Gauge
	ServersInScope prometheus.Gauge
	ServersNoAgent prometheus.Gauge
}

// NewMetrics creates the instruments on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		LoadsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "arcaudit_loads_total",
			Help: "Total number of successful inventory loads",
		}),
		ReportsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "arcaudit_reports_total",
			Help: "Total number of reports rendered",
		}),
		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arcaudit_pipeline_failures_total",
			Help: "Pipeline failures by error kind",
		}, []string{"kind"}),
		ExportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arcaudit_exports_total",
			Help: "Exports produced by format",
		}, []string{"format"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arcaudit_stage_cache_lookups_total",
			Help: "Memoized stage lookups by stage and outcome",
		}, []string{"stage", "hit"}),
		Compliance: f.NewGauge(prometheus.GaugeOpts{
			Name: "arcaudit_compliance_percent",
			Help: "Compliance percentage of the last rendered report",
		}),
		ServersInScope: f.NewGauge(prometheus.GaugeOpts{
			Name: "arcaudit_servers_in_report",
			Help: "Rows in the last rendered report",
		}),
		ServersNoAgent: f.NewGauge(prometheus.GaugeOpts{
			Name: "arcaudit_servers_without_agent",
			Help: "Servers without an agent in the last rendered report",
		}),
	}
}

// CacheLookup records a memoized stage lookup.
func (m *Metrics) CacheLookup(stage string, hit bool) {
	m.CacheLookups.WithLabelValues(stage, strconv.FormatBool(hit)).Inc()
}

// ObserveReport records the headline numbers of a rendered report.
func (m *Metrics) ObserveReport(total, without int, compliance float64) {
	m.ReportsTotal.Inc()
	m.ServersInScope.Set(float64(total))
	m.ServersNoAgent.Set(float64(without))
	m.Compliance.Set(compliance)
}

// IncrementFailures counts a pipeline failure of the given kind.
func (m *Metrics) IncrementFailures(kind string) {
	m.FailuresTotal.WithLabelValues(kind).Inc()
}

// IncrementExports counts an export in the given format.
func (m *Metrics) IncrementExports(format string) {
	m.ExportsTotal.WithLabelValues(format).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
