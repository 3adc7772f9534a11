package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds, as rendered to API clients.
const (
	KindSourceRead    = "source_read"
	KindMissingColumn = "missing_column"
	KindJoin          = "join"
	KindInternal      = "internal"
)

// SourceReadError means an input file is missing, corrupt or unreadable.
type SourceReadError struct {
	Source string
	Err    error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Source, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// MissingColumnError means an expected column is absent from a loaded table.
// Alternatives marks Columns as interchangeable: any one of them would have
// sufficed.
type MissingColumnError struct {
	Table        string
	Columns      []string
	Alternatives bool
}

func (e *MissingColumnError) Error() string {
	quoted := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	sep := ", "
	if e.Alternatives {
		sep = " or "
	}
	return fmt.Sprintf("%s table: missing column %s", e.Table, strings.Join(quoted, sep))
}

// JoinError is a structural failure while merging the two inventories.
type JoinError struct {
	Err error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("joining inventories: %v", e.Err)
}

func (e *JoinError) Unwrap() error { return e.Err }

// Kind classifies err into one of the Kind* labels. JoinError takes
// precedence over a MissingColumnError it wraps.
func Kind(err error) string {
	var (
		readErr *SourceReadError
		joinErr *JoinError
		colErr  *MissingColumnError
	)
	switch {
	case errors.As(err, &readErr):
		return KindSourceRead
	case errors.As(err, &joinErr):
		return KindJoin
	case errors.As(err, &colErr):
		return KindMissingColumn
	}
	return KindInternal
}
