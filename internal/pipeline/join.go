package pipeline

import (
	"fmt"

	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/table"
)

// Merged is the left outer join of the filtered CMDB table with the agent
// table. Left and Right map each source column name to its name in Table,
// which differs only when the name collided and was suffixed.
type Merged struct {
	Table *table.Table
	Left  map[string]string
	Right map[string]string
}

// Len returns the merged row count.
func (m *Merged) Len() int { return m.Table.Len() }

// LeftColumn resolves a CMDB column name in the merged table.
func (m *Merged) LeftColumn(name string) (string, bool) {
	c, ok := m.Left[name]
	return c, ok
}

// RightColumn resolves an agent-table column name in the merged table.
func (m *Merged) RightColumn(name string) (string, bool) {
	c, ok := m.Right[name]
	return c, ok
}

// Join attaches agent rows to CMDB rows where the normalized hostname equals
// the agent join key. Every left row is kept; a left row matching several
// agent rows appears once per match, and unmatched rows get nulls.
func Join(left, right *table.Table, cols models.Columns) (*Merged, error) {
	if !left.Has(cols.Hostname) {
		return nil, &models.JoinError{Err: &models.MissingColumnError{Table: "primary", Columns: []string{cols.Hostname}}}
	}
	if !right.Has(cols.JoinKey) {
		return nil, &models.JoinError{Err: &models.MissingColumnError{Table: "secondary", Columns: []string{cols.JoinKey}}}
	}

	m := &Merged{
		Left:  make(map[string]string, len(left.Columns)),
		Right: make(map[string]string, len(right.Columns)),
	}
	names := make([]string, 0, len(left.Columns)+len(right.Columns))
	for _, c := range left.Columns {
		name := c
		if right.Has(c) {
			name = c + cols.LeftSuffix
		}
		m.Left[c] = name
		names = append(names, name)
	}
	for _, c := range right.Columns {
		name := c
		if left.Has(c) {
			name = c + cols.RightSuffix
		}
		m.Right[c] = name
		names = append(names, name)
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return nil, &models.JoinError{Err: fmt.Errorf("column %q is ambiguous after suffixing", n)}
		}
		seen[n] = struct{}{}
	}
	m.Table = table.New(names...)

	keyIdx := right.Index(cols.JoinKey)
	byKey := make(map[string][]int, len(right.Rows))
	for i, row := range right.Rows {
		if k := row[keyIdx]; k.Valid {
			byKey[k.String] = append(byKey[k.String], i)
		}
	}

	hostIdx := left.Index(cols.Hostname)
	width := len(names)
	for _, lrow := range left.Rows {
		var matches []int
		if k := lrow[hostIdx]; k.Valid {
			matches = byKey[k.String]
		}
		if len(matches) == 0 {
			row := make(table.Row, width)
			copy(row, lrow)
			m.Table.Rows = append(m.Table.Rows, row)
			continue
		}
		for _, ri := range matches {
			row := make(table.Row, width)
			copy(row, lrow)
			copy(row[len(lrow):], right.Rows[ri])
			m.Table.Rows = append(m.Table.Rows, row)
		}
	}
	return m, nil
}
