// Package audit runs the compliance pipeline against the configured
// sources and renders reports and exports from it. A Service serializes
// access to its pipeline, so HTTP handlers may share one.
package audit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vesaa/arcaudit/internal/config"
	"github.com/vesaa/arcaudit/internal/loader"
	"github.com/vesaa/arcaudit/internal/logger"
	"github.com/vesaa/arcaudit/internal/metrics"
	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/pipeline"
	"github.com/vesaa/arcaudit/internal/report"
)

// ErrNoData is returned when no load has been attempted yet.
var ErrNoData = errors.New("inventories have not been loaded")

// Result is a rendered report plus the state the UI needs to redraw filters.
type Result struct {
	RunID     string             `json:"run_id"`
	Report    *report.Report     `json:"report"`
	Options   pipeline.Options   `json:"options"`
	Selection pipeline.Selection `json:"selection"`
}

// Service owns the loader, the pipeline and the metrics of one report.
type Service struct {
	cfg     *config.Config
	loader  *loader.Loader
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu      sync.Mutex
	pipe    *pipeline.Pipeline
	loadErr error
}

// NewService builds a Service from cfg. Call Reload before rendering.
func NewService(cfg *config.Config, m *metrics.Metrics) (*Service, error) {
	ldr, err := loader.New(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	memo, err := pipeline.NewMemo(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:     cfg,
		loader:  ldr,
		metrics: m,
		log:     logger.WithComponent("audit"),
		pipe: pipeline.New(cfg.Columns,
			pipeline.WithMemo(memo),
			pipeline.WithRecorder(m),
			pipeline.WithRules(cfg.Filters)),
		loadErr: ErrNoData,
	}, nil
}

// Reload reads both sources and re-runs the whole pipeline. A failed reload
// leaves the service without data until the next successful one.
func (s *Service) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadErr = s.reload()
	if s.loadErr != nil {
		return s.fail(s.loadErr)
	}
	s.metrics.LoadsTotal.Inc()
	return nil
}

func (s *Service) reload() error {
	primary, err := s.loader.LoadPrimary(s.cfg.PrimaryPath, s.cfg.PrimarySheet)
	if err != nil {
		return err
	}
	secondary, err := s.loader.LoadSecondary(s.cfg.SecondaryPath)
	if err != nil {
		return err
	}
	return s.pipe.Load(primary, secondary)
}

// Report applies sel and renders the report.
func (s *Service) Report(sel pipeline.Selection) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(sel)
}

func (s *Service) render(sel pipeline.Selection) (*Result, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if err := s.pipe.Apply(sel); err != nil {
		return nil, s.fail(err)
	}
	r, err := report.Build(s.pipe.Merged(), s.cfg.Columns)
	if err != nil {
		return nil, s.fail(err)
	}
	s.metrics.ObserveReport(r.Summary.Total, r.Summary.WithoutAgent, r.Summary.CompliancePct)
	return &Result{
		RunID:     s.pipe.RunID(),
		Report:    r,
		Options:   s.pipe.Options(),
		Selection: s.pipe.Selection(),
	}, nil
}

// Export applies sel and serializes both detail tables in format f.
func (s *Service) Export(sel pipeline.Selection, f report.Format) (*report.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.render(sel)
	if err != nil {
		return nil, err
	}
	file, err := report.Export(res.Report, f)
	if err != nil {
		return nil, s.fail(fmt.Errorf("exporting report: %w", err))
	}
	s.metrics.IncrementExports(string(f))
	s.log.Info().
		Str("run_id", res.RunID).
		Str("format", string(f)).
		Int("bytes", len(file.Data)).
		Msg("report exported")
	return file, nil
}

func (s *Service) fail(err error) error {
	kind := models.Kind(err)
	s.metrics.IncrementFailures(kind)
	s.log.Error().Err(err).Str("kind", kind).Msg("pipeline halted")
	return err
}
