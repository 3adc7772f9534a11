package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vesaa/arcaudit/internal/logger"
	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/table"
)

// ErrNotLoaded is returned when a selection is applied before Load.
var ErrNotLoaded = errors.New("pipeline: inventories not loaded")

// Recorder observes memoized stage lookups.
type Recorder interface {
	CacheLookup(stage string, hit bool)
}

// Pipeline holds the state of one compliance report: the normalized agent
// table, the in-scope CMDB rows, the current user selection and the merged result.
// Load re-runs every stage; Apply re-runs only the dynamic filter and join.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	cols  models.Columns
	rules models.StaticRules
	memo  *Memo
	rec   Recorder
	log   zerolog.Logger

	runID     string
	secondary *table.Table
	scoped    *table.Table

	sel     Selection
	options Options
	merged  *Merged
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMemo caches the static filter and join results in m.
func WithMemo(m *Memo) Option { return func(p *Pipeline) { p.memo = m } }

// WithRecorder reports cache lookups to r.
func WithRecorder(r Recorder) Option { return func(p *Pipeline) { p.rec = r } }

// WithRules overrides the default scope predicates.
func WithRules(r models.StaticRules) Option { return func(p *Pipeline) { p.rules = r } }

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option { return func(p *Pipeline) { p.log = l } }

// New creates an empty pipeline over the given column layout.
func New(cols models.Columns, opts ...Option) *Pipeline {
	p := &Pipeline{
		cols:  cols,
		rules: models.DefaultStaticRules(),
		log:   logger.WithComponent("pipeline"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Load normalizes both raw tables, applies the scope filter and recomputes
// the report for the current selection. On error the previous state is
// discarded so no stale report survives a failed load.
func (p *Pipeline) Load(primary, secondary *table.Table) error {
	p.reset()
	runID := uuid.NewString()

	np, ns, err := Normalize(primary, secondary, p.cols)
	if err != nil {
		return fmt.Errorf("normalizing inventories: %w", err)
	}

	scoped, hit, err := memoize(p.memo,
		stageKey("static", []uint64{np.Hash()}, p.rules.OSFamilyKeyword, p.rules.RoleKeyword, p.cols.OSFamily, p.cols.Role),
		func() (*table.Table, error) { return StaticFilter(np, p.cols, p.rules) })
	p.lookup("static", hit)
	if err != nil {
		return fmt.Errorf("applying scope filter: %w", err)
	}

	p.runID, p.secondary, p.scoped = runID, ns, scoped
	p.log.Info().
		Str("run_id", runID).
		Int("cmdb_rows", np.Len()).
		Int("agent_rows", ns.Len()).
		Int("in_scope", scoped.Len()).
		Msg("inventories loaded")

	if err := p.refresh(); err != nil {
		p.reset()
		return err
	}
	return nil
}

// Apply sets the user selection and recomputes the filtered and merged
// tables. Re-applying the current selection is a no-op.
func (p *Pipeline) Apply(sel Selection) error {
	if p.scoped == nil {
		return ErrNotLoaded
	}
	if p.merged != nil && p.sel.Equal(sel) {
		return nil
	}
	p.sel = sel.clone()
	return p.refresh()
}

func (p *Pipeline) refresh() error {
	p.merged = nil

	filtered, opts, err := DynamicFilter(p.scoped, p.cols, p.sel)
	if err != nil {
		return fmt.Errorf("applying selection: %w", err)
	}

	merged, hit, err := memoize(p.memo,
		stageKey("join", []uint64{filtered.Hash(), p.secondary.Hash()},
			p.cols.Hostname, p.cols.JoinKey, p.cols.LeftSuffix, p.cols.RightSuffix),
		func() (*Merged, error) { return Join(filtered, p.secondary, p.cols) })
	p.lookup("join", hit)
	if err != nil {
		return err
	}

	p.options, p.merged = opts, merged
	p.log.Debug().
		Str("run_id", p.runID).
		Int("filtered", filtered.Len()).
		Int("merged", merged.Len()).
		Msg("selection applied")
	return nil
}

func (p *Pipeline) reset() {
	p.runID = ""
	p.secondary, p.scoped, p.merged = nil, nil, nil
	p.options = Options{}
}

func (p *Pipeline) lookup(stage string, hit bool) {
	if p.rec != nil {
		p.rec.CacheLookup(stage, hit)
	}
}

// Loaded reports whether a successful Load produced a merged table.
func (p *Pipeline) Loaded() bool { return p.merged != nil }

// RunID identifies the current load in logs.
func (p *Pipeline) RunID() string { return p.runID }

// Selection returns a copy of the current selection.
func (p *Pipeline) Selection() Selection { return p.sel.clone() }

// Options returns the candidate values of every dynamic filter.
func (p *Pipeline) Options() Options { return p.options }

// Scoped returns the CMDB rows that passed the scope filter.
func (p *Pipeline) Scoped() *table.Table { return p.scoped }

// Merged returns the current join result, or nil before a successful Load.
func (p *Pipeline) Merged() *Merged { return p.merged }
