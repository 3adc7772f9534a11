package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"
)

// Format is the user-selected export format.
type Format string

const (
	FormatSpreadsheet Format = "xlsx"
	FormatCSV         Format = "csv"
)

// Export file and entry names.
const (
	SpreadsheetFileName = "server_results.xlsx"
	ArchiveFileName     = "server_results.zip"
	WithAgentCSV        = "servers_with_agent.csv"
	WithoutAgentCSV     = "servers_without_agent.csv"

	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ArchiveContentType     = "application/zip"
)

// ParseFormat maps the toggle value to a Format. Empty selects the spreadsheet.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel", "spreadsheet":
		return FormatSpreadsheet, nil
	case "csv", "zip":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (use xlsx or csv)", s)
}

// File is an in-memory download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export serializes both detail tables in format f.
func Export(r *Report, f Format) (*File, error) {
	switch f {
	case FormatSpreadsheet:
		data, err := ExportSpreadsheet(r)
		if err != nil {
			return nil, err
		}
		return &File{Name: SpreadsheetFileName, ContentType: SpreadsheetContentType, Data: data}, nil
	case FormatCSV:
		data, err := ExportArchive(r)
		if err != nil {
			return nil, err
		}
		return &File{Name: ArchiveFileName, ContentType: ArchiveContentType, Data: data}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// ExportSpreadsheet writes a workbook with one sheet per detail table.
func ExportSpreadsheet(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LabelWithAgent); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(LabelWithoutAgent); err != nil {
		return nil, fmt.Errorf("adding sheet: %w", err)
	}
	if err := writeSheet(f, LabelWithAgent, r.WithAgentRecords()); err != nil {
		return nil, err
	}
	if err := writeSheet(f, LabelWithoutAgent, r.WithoutAgentRecords()); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet stores every value as a string cell so identifiers keep their
// leading zeros.
func writeSheet(f *excelize.File, sheet string, records [][]string) error {
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing sheet %q row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// ExportArchive writes a zip holding one CSV per detail table.
func ExportArchive(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name    string
		records [][]string
	}{
		{WithAgentCSV, r.WithAgentRecords()},
		{WithoutAgentCSV, r.WithoutAgentRecords()},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", e.name, err)
		}
		if err := csv.NewWriter(w).WriteAll(e.records); err != nil {
			return nil, fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
