package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/table"
)

func writeWorkbook(t *testing.T, path, sheet string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadPrimaryKeepsTextKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CMDB.xlsx")
	writeWorkbook(t, path, "INFRASTRUCTURE", [][]any{
		{"Hostname", "OS Family", "Rack"},
		{"012345", "Windows", 42},
		{},
		{"SRV-02", "", nil},
	})

	l, err := New(4)
	require.NoError(t, err)
	tb, err := l.LoadPrimary(path, "INFRASTRUCTURE")
	require.NoError(t, err)

	assert.Equal(t, []string{"Hostname", "OS Family", "Rack"}, tb.Columns)
	require.Equal(t, 2, tb.Len(), "blank rows are skipped")
	assert.Equal(t, table.Str("012345"), tb.Get(0, "Hostname"))
	assert.Equal(t, "42", tb.Get(0, "Rack").String)
	assert.False(t, tb.Get(1, "OS Family").Valid)
	assert.False(t, tb.Get(1, "Rack").Valid)
}

func TestReadPrimaryNamesUnlabeledColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CMDB.xlsx")
	writeWorkbook(t, path, "INFRASTRUCTURE", [][]any{
		{"Hostname", "OS Family"},
		{"srv01", "Windows"},
		{"srv02", "Windows", nil, "reviewed by ops"},
	})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	tb, err := ReadPrimary(f, "INFRASTRUCTURE")
	require.NoError(t, err)

	assert.Equal(t, []string{"Hostname", "OS Family", "Unnamed: 2", "Unnamed: 3"}, tb.Columns)
	require.Equal(t, 2, tb.Len())
	assert.False(t, tb.Get(0, "Unnamed: 3").Valid)
	assert.Equal(t, table.Str("reviewed by ops"), tb.Get(1, "Unnamed: 3"))
}

func TestLoadPrimaryMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CMDB.xlsx")
	writeWorkbook(t, path, "Other", [][]any{{"Hostname"}})

	l, err := New(4)
	require.NoError(t, err)
	_, err = l.LoadPrimary(path, "INFRASTRUCTURE")

	var readErr *models.SourceReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, path, readErr.Source)
	assert.Contains(t, err.Error(), "INFRASTRUCTURE")
}

func TestLoadMissingAndCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := New(4)
	require.NoError(t, err)

	_, err = l.LoadSecondary(filepath.Join(dir, "absent.csv"))
	assert.Equal(t, models.KindSourceRead, models.Kind(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	bogus := filepath.Join(dir, "CMDB.xlsx")
	require.NoError(t, os.WriteFile(bogus, []byte("not a workbook"), 0o600))
	_, err = l.LoadPrimary(bogus, "INFRASTRUCTURE")
	assert.Equal(t, models.KindSourceRead, models.Kind(err))
}

func TestReadSecondary(t *testing.T) {
	src := "\ufeffHOST NAME, NAME, ARC AGENT STATUS\n" +
		"\"srv01\", \"srv01.corp\", Connected\n" +
		", \"web, 02\", Expired\n" +
		"short\n" +
		"\n"
	tb, err := ReadSecondary(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"HOST NAME", "NAME", "ARC AGENT STATUS"}, tb.Columns)
	require.Equal(t, 3, tb.Len())
	assert.Equal(t, "srv01.corp", tb.Get(0, "NAME").String)
	assert.False(t, tb.Get(1, "HOST NAME").Valid)
	assert.Equal(t, "web, 02", tb.Get(1, "NAME").String)
	assert.False(t, tb.Get(2, "ARC AGENT STATUS").Valid)
}

func TestReadSecondaryRejectsMalformedInput(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"too many fields": "a,b\n1,2,3\n",
		"bad quoting":     "a,b\n\"open,2\n",
		"bad encoding":    "a,b\n\xff\xfe,2\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSecondary(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestUniqueHeader(t *testing.T) {
	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.2"}, uniqueHeader([]string{"a", "a", "", "a"}))
}

func TestLoaderReturnsIndependentCopies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AzureArc.csv")
	require.NoError(t, os.WriteFile(path, []byte("NAME,ARC AGENT STATUS\nsrv01,Connected\n"), 0o600))

	l, err := New(4)
	require.NoError(t, err)
	first, err := l.LoadSecondary(path)
	require.NoError(t, err)
	first.Rows[0][0] = table.Str("mutated")

	second, err := l.LoadSecondary(path)
	require.NoError(t, err)
	assert.Equal(t, "srv01", second.Get(0, "NAME").String)
}
