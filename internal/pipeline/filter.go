package pipeline

import (
	"slices"
	"strings"

	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/table"
)

// StaticFilter keeps the CMDB rows in report scope: the OS family contains
// rules.OSFamilyKeyword and the role contains rules.RoleKeyword, both
// case-insensitively. Null cells never match.
func StaticFilter(t *table.Table, cols models.Columns, rules models.StaticRules) (*table.Table, error) {
	if miss := t.Missing(cols.OSFamily, cols.Role); len(miss) > 0 {
		return nil, &models.MissingColumnError{Table: "primary", Columns: miss}
	}
	famIdx, roleIdx := t.Index(cols.OSFamily), t.Index(cols.Role)
	fam, role := strings.ToLower(rules.OSFamilyKeyword), strings.ToLower(rules.RoleKeyword)

	return t.Filter(func(r table.Row) bool {
		return containsFold(r[famIdx], fam) && containsFold(r[roleIdx], role)
	}), nil
}

func containsFold(v table.Value, lowerNeedle string) bool {
	return v.Valid && strings.Contains(strings.ToLower(v.String), lowerNeedle)
}

// Selection is the user's choice for each dynamic filter. Empty slices
// disable the corresponding filter.
type Selection struct {
	OS               []string `json:"os"`
	States           []string `json:"state"`
	Environments     []string `json:"env"`
	ExcludeLocations []string `json:"exclude_location"`
	ExcludeHosts     []string `json:"exclude_host"`
}

// Equal reports whether both selections pick the same values in the same order.
func (s Selection) Equal(o Selection) bool {
	return slices.Equal(s.OS, o.OS) &&
		slices.Equal(s.States, o.States) &&
		slices.Equal(s.Environments, o.Environments) &&
		slices.Equal(s.ExcludeLocations, o.ExcludeLocations) &&
		slices.Equal(s.ExcludeHosts, o.ExcludeHosts)
}

func (s Selection) clone() Selection {
	return Selection{
		OS:               slices.Clone(s.OS),
		States:           slices.Clone(s.States),
		Environments:     slices.Clone(s.Environments),
		ExcludeLocations: slices.Clone(s.ExcludeLocations),
		ExcludeHosts:     slices.Clone(s.ExcludeHosts),
	}
}

// Options lists the values offered by each dynamic filter. Each list is
// computed after every earlier filter has been applied.
type Options struct {
	OS        []string `json:"os"`
	States    []string `json:"state"`
	Envs      []string `json:"env"`
	Locations []string `json:"exclude_location"`
	Hosts     []string `json:"exclude_host"`
}

type filterStep struct {
	column    string
	values    []string
	exclude   bool
	hostnames bool
	options   *[]string
}

// DynamicFilter applies the user selection to the in-scope CMDB rows, in
// order: OS, state and environment (inclusion), then location and hostname
// (exclusion). It also returns the candidate values for every step.
func DynamicFilter(t *table.Table, cols models.Columns, sel Selection) (*table.Table, Options, error) {
	var opts Options
	if miss := t.Missing(cols.OS, cols.State, cols.Environment, cols.Location, cols.Hostname); len(miss) > 0 {
		return nil, opts, &models.MissingColumnError{Table: "primary", Columns: miss}
	}

	steps := []filterStep{
		{column: cols.OS, values: sel.OS, options: &opts.OS},
		{column: cols.State, values: sel.States, options: &opts.States},
		{column: cols.Environment, values: sel.Environments, options: &opts.Envs},
		{column: cols.Location, values: sel.ExcludeLocations, exclude: true, options: &opts.Locations},
		{column: cols.Hostname, values: sel.ExcludeHosts, exclude: true, hostnames: true, options: &opts.Hosts},
	}

	cur := t
	for _, st := range steps {
		values, err := cur.Distinct(st.column)
		if err != nil {
			return nil, opts, err
		}
		*st.options = values
		cur = applyStep(cur, st)
	}
	return cur, opts, nil
}

func applyStep(t *table.Table, st filterStep) *table.Table {
	if len(st.values) == 0 {
		return t
	}
	set := make(map[string]struct{}, len(st.values))
	for _, v := range st.values {
		if st.hostnames {
			v = NormalizeHostname(v)
		}
		set[v] = struct{}{}
	}
	idx := t.Index(st.column)
	return t.Filter(func(r table.Row) bool {
		v := r[idx]
		if !v.Valid {
			return st.exclude
		}
		_, in := set[v.String]
		return in != st.exclude
	})
}
