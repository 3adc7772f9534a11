package audit

import (
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesaa/arcaudit/internal/audit/audittest"
	"github.com/vesaa/arcaudit/internal/metrics"
	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/pipeline"
	"github.com/vesaa/arcaudit/internal/report"
)

func newService(t *testing.T) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics()
	s, err := NewService(audittest.Config(t), m)
	require.NoError(t, err)
	return s, m
}

func TestReportBeforeReload(t *testing.T) {
	s, _ := newService(t)
	_, err := s.Report(pipeline.Selection{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReport(t *testing.T) {
	s, m := newService(t)
	require.NoError(t, s.Reload())

	res, err := s.Report(pipeline.Selection{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, audittest.ExpectedSummary, res.Report.Summary)
	assert.Equal(t, []string{"srv-app01", "srv-web02", "012345", "srv-db04"}, res.Options.Hosts)
	assert.Equal(t, []models.ServerRow{
		{Hostname: "srv-app01", ManagementIP: "10.0.0.1", Status: "Connected"},
		{Hostname: "srv-web02", ManagementIP: "10.0.0.2", Status: "Expired"},
	}, res.Report.WithAgent)

	res, err = s.Report(pipeline.Selection{ExcludeLocations: []string{"Madrid"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Report.Summary.Total)
	assert.Equal(t, []string{"Madrid", "Lima", "Bogota"}, res.Options.Locations)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadsTotal))
}

func TestExport(t *testing.T) {
	s, m := newService(t)
	require.NoError(t, s.Reload())

	file, err := s.Export(pipeline.Selection{}, report.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, report.ArchiveFileName, file.Name)
	assert.NotEmpty(t, file.Data)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsTotal.WithLabelValues("csv")))
}

func TestReloadFailureHaltsReports(t *testing.T) {
	cfg := audittest.Config(t)
	m := metrics.NewMetrics()
	s, err := NewService(cfg, m)
	require.NoError(t, err)
	require.NoError(t, s.Reload())

	require.NoError(t, os.Remove(cfg.SecondaryPath))
	err = s.Reload()
	assert.Equal(t, models.KindSourceRead, models.Kind(err))

	_, err = s.Report(pipeline.Selection{})
	assert.Equal(t, models.KindSourceRead, models.Kind(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues(models.KindSourceRead)))
}

func TestReloadMissingColumn(t *testing.T) {
	cfg := audittest.Config(t)
	cfg.Columns.Hostname = "Asset Name"
	s, err := NewService(cfg, metrics.NewMetrics())
	require.NoError(t, err)
	assert.Equal(t, models.KindMissingColumn, models.Kind(s.Reload()))
}
