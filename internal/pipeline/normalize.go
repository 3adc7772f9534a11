// Package pipeline implements the compliance pipeline stages: key
// normalization, scope filters, user filters and the inventory join, plus a
// stateful Pipeline that re-runs only the stages a change affects.
package pipeline

import (
	"strings"

	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/table"
)

// NormalizeHostname trims and lowercases a host identifier.
func NormalizeHostname(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeKey applies NormalizeHostname to a cell. Keys that normalize to
// the empty string become null and never join.
func normalizeKey(v table.Value) table.Value {
	if !v.Valid {
		return v
	}
	return table.OrNull(NormalizeHostname(v.String))
}

// Normalize returns copies of the CMDB and agent tables with comparable keys:
// the CMDB hostname is normalized in place and the agent table gains the
// cols.JoinKey column. Inputs are not modified.
func Normalize(primary, secondary *table.Table, cols models.Columns) (*table.Table, *table.Table, error) {
	if !primary.Has(cols.Hostname) {
		return nil, nil, &models.MissingColumnError{Table: "primary", Columns: []string{cols.Hostname}}
	}
	hostIdx, nameIdx := secondary.Index(cols.HostName), secondary.Index(cols.Name)
	if hostIdx < 0 && nameIdx < 0 {
		return nil, nil, &models.MissingColumnError{
			Table:        "secondary",
			Columns:      []string{cols.HostName, cols.Name},
			Alternatives: true,
		}
	}

	p := primary.Clone()
	hi := p.Index(cols.Hostname)
	for _, row := range p.Rows {
		row[hi] = normalizeKey(row[hi])
	}

	s := secondary.Clone()
	keyIdx := s.Index(cols.JoinKey)
	if keyIdx < 0 {
		s.Columns = append(s.Columns, cols.JoinKey)
		keyIdx = len(s.Columns) - 1
		for i, row := range s.Rows {
			s.Rows[i] = append(row, table.Null)
		}
	}
	for _, row := range s.Rows {
		v := table.Null
		if hostIdx >= 0 {
			v = row[hostIdx]
		}
		if !v.Valid && nameIdx >= 0 {
			v = row[nameIdx]
		}
		row[keyIdx] = normalizeKey(v)
	}

	if si := s.Index(cols.AgentStatus); si >= 0 {
		for _, row := range s.Rows {
			if row[si].Valid {
				row[si] = table.Str(strings.TrimSpace(row[si].String))
			}
		}
	}
	return p, s, nil
}
