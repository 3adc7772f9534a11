// Package table provides the in-memory tabular model shared by the loader,
// the pipeline and the reporter. Every cell is text; absent values are
// explicit nulls rather than empty strings.
package table

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Value is a nullable text cell.
type Value struct {
	String string
	Valid  bool
}

// Null is the absent value.
var Null = Value{}

// Str wraps s as a present value.
func Str(s string) Value { return Value{String: s, Valid: true} }

// OrNull returns Str(s) for non-empty s and Null otherwise.
func OrNull(s string) Value {
	if s == "" {
		return Null
	}
	return Str(s)
}

// Or returns the value's text, or def when the value is null.
func (v Value) Or(def string) string {
	if !v.Valid {
		return def
	}
	return v.String
}

// Row is one record; cells are positional and match Table.Columns.
type Row []Value

// Table is an ordered set of named columns over rows of nullable text.
// Operations return new tables and never mutate their receiver's rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given header.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Append adds a row, padding with nulls or truncating to the column count.
func (t *Table) Append(cells ...Value) {
	row := make(Row, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// AppendStrings adds a row of present values (empty strings become nulls).
func (t *Table) AppendStrings(cells ...string) {
	row := make(Row, len(t.Columns))
	for i := 0; i < len(row) && i < len(cells); i++ {
		row[i] = OrNull(cells[i])
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries column name.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Missing returns the names in want that the table does not carry.
func (t *Table) Missing(want ...string) []string {
	var out []string
	for _, w := range want {
		if !t.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// Get returns the cell at row r for column name, or Null when the column is absent.
func (t *Table) Get(r int, name string) Value {
	idx := t.Index(name)
	if idx < 0 || r < 0 || r >= len(t.Rows) {
		return Null
	}
	return t.Rows[r][idx]
}

// Filter returns a table holding the rows for which keep returns true.
// Row slices are shared with the receiver.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.Columns...)
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Distinct returns the non-null values of column name in first-appearance order.
func (t *Table) Distinct(name string) ([]string, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, row := range t.Rows {
		v := row[idx]
		if !v.Valid {
			continue
		}
		if _, ok := seen[v.String]; ok {
			continue
		}
		seen[v.String] = struct{}{}
		out = append(out, v.String)
	}
	return out, nil
}

// Select projects the table onto the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.Index(n)
		if idx[i] < 0 {
			return nil, fmt.Errorf("column %q not found", n)
		}
	}
	out := New(names...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := make(Row, len(idx))
		for i, j := range idx {
			r[i] = row[j]
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

// Clone deep-copies the header and every row.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		r := make(Row, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// Hash returns a content digest of the header and every cell, nulls
// distinguished from empty strings.
func (t *Table) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(strconv.Itoa(len(t.Columns)))
	for _, c := range t.Columns {
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(c)
	}
	for _, row := range t.Rows {
		_, _ = d.WriteString("\x1e")
		for _, v := range row {
			if v.Valid {
				_, _ = d.WriteString("\x1f+")
				_, _ = d.WriteString(v.String)
			} else {
				_, _ = d.WriteString("\x1f-")
			}
		}
	}
	return d.Sum64()
}
