// Package loader reads the CMDB workbook and the agent-status CSV into
// in-memory tables. Every cell is kept as text so identifiers such as
// "012345" are never coerced to numbers.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/vesaa/arcaudit/internal/logger"
	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/table"
)

const utf8BOM = "\ufeff"

// ReadPrimary parses a workbook and returns the given sheet as a table.
// The first row is the header.
func ReadPrimary(r io.Reader, sheet string) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return fromRecords(widenHeader(rows))
}

// widenHeader pads the header to the widest row, so cells in unlabeled
// columns become "Unnamed: i" columns instead of failing the load.
func widenHeader(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := 0
	for _, rec := range rows {
		width = max(width, len(rec))
	}
	if pad := width - len(rows[0]); pad > 0 {
		rows[0] = append(rows[0], make([]string, pad)...)
	}
	return rows
}

// ReadSecondary parses a comma-separated, double-quoted export. Spaces after
// a delimiter are ignored and short rows are padded with nulls.
func ReadSecondary(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = ','
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	for i, rec := range records {
		for _, field := range rec {
			if !utf8.ValidString(field) {
				return nil, fmt.Errorf("line %d: invalid UTF-8 text", i+1)
			}
		}
	}
	return fromRecords(records)
}

// fromRecords builds a table from a header record followed by data records.
// Blank records are skipped; duplicate or empty header names are made unique.
func fromRecords(records [][]string) (*table.Table, error) {
	if len(records) == 0 || isBlank(records[0]) {
		return nil, errors.New("source has no header row")
	}
	t := table.New(uniqueHeader(records[0])...)
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(t.Columns) && !isBlank(rec[len(t.Columns):]) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(rec), len(t.Columns))
		}
		t.AppendStrings(rec...)
	}
	return t, nil
}

func uniqueHeader(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, name := range raw {
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if f != "" {
			return false
		}
	}
	return true
}

// Loader reads sources from disk and memoizes parsed tables by content, so
// re-reading unchanged files skips parsing.
type Loader struct {
	cache *lru.Cache[uint64, *table.Table]
	log   zerolog.Logger
}

// New creates a Loader remembering up to size parsed sources.
func New(size int) (*Loader, error) {
	c, err := lru.New[uint64, *table.Table](size)
	if err != nil {
		return nil, fmt.Errorf("creating source cache: %w", err)
	}
	return &Loader{cache: c, log: logger.WithComponent("loader")}, nil
}

// LoadPrimary reads the CMDB workbook at path.
func (l *Loader) LoadPrimary(path, sheet string) (*table.Table, error) {
	return l.load(path, "xlsx:"+sheet, func(data []byte) (*table.Table, error) {
		return ReadPrimary(bytes.NewReader(data), sheet)
	})
}

// LoadSecondary reads the agent-status CSV at path.
func (l *Loader) LoadSecondary(path string) (*table.Table, error) {
	return l.load(path, "csv", func(data []byte) (*table.Table, error) {
		return ReadSecondary(bytes.NewReader(data))
	})
}

func (l *Loader) load(path, kind string, parse func([]byte) (*table.Table, error)) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.SourceReadError{Source: path, Err: err}
	}

	d := xxhash.New()
	_, _ = d.WriteString(kind)
	_, _ = d.WriteString("\x00")
	_, _ = d.Write(data)
	key := d.Sum64()

	if t, ok := l.cache.Get(key); ok {
		l.log.Debug().Str("source", path).Msg("source unchanged, reusing parsed table")
		return t.Clone(), nil
	}

	t, err := parse(data)
	if err != nil {
		return nil, &models.SourceReadError{Source: path, Err: err}
	}
	l.cache.Add(key, t)
	l.log.Info().Str("source", path).Int("rows", t.Len()).Int("columns", len(t.Columns)).Msg("source loaded")
	return t.Clone(), nil
}
