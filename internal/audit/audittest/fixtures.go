// Package audittest writes sample CMDB and agent exports for tests.
package audittest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vesaa/arcaudit/internal/config"
	"github.com/vesaa/arcaudit/internal/logger"
	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/report"
)

// Sheet is the workbook sheet the fixtures write.
const Sheet = "INFRASTRUCTURE"

// CMDBRows is the sample asset list, header first. Four rows are in scope:
// srv-app01, srv-web02, 012345 and srv-db04.
var CMDBRows = [][]string{
	{"Hostname", "OS Family", "Primary Capacity", "Operating System", "Operational State", "Environment", "Location", "Management IP"},
	{"SRV-APP01", "Microsoft Windows", "Application Server", "Windows Server 2019", "Operational", "PROD", "Madrid", "10.0.0.1"},
	{" srv-web02", "Windows", "Web Server", "Windows Server 2022", "Operational", "DEV", "Lima", "10.0.0.2"},
	{"lnx-app03", "Linux", "Application Server", "RHEL 8", "Operational", "PROD", "Madrid", "10.0.0.3"},
	{"012345", "Windows", "File Server", "Windows Server 2016", "Maintenance", "PROD", "Bogota", "10.0.0.4"},
	{"srv-db04", "Windows", "Database Server", "Windows Server 2019", "Operational", "PROD", "Madrid", "10.0.0.5"},
	{"pc-0099", "Windows", "Workstation", "Windows 11", "Operational", "PROD", "Madrid", "10.0.0.6"},
}

// AgentCSV is the sample agent export. srv-app01 is connected, srv-web02 is
// expired (found via NAME), 012345 reports an unknown status and srv-db04 is
// absent.
const AgentCSV = `HOST NAME, NAME, ARC AGENT STATUS
"  srv-app01 ", "SRV-APP01", Connected
, "SRV-WEB02", Expired
"012345", "", Disconnected
"ghost", "ghost", Connected
`

// WriteWorkbook writes records to sheet of a new workbook at path, every
// cell as a string.
func WriteWorkbook(t *testing.T, path, sheet string, records [][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

// Config writes both fixtures into a temp dir and returns a config that
// points at them.
func Config(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		ServerHost:    "127.0.0.1",
		Port:          0,
		PrimaryPath:   filepath.Join(dir, "CMDB.xlsx"),
		PrimarySheet:  Sheet,
		SecondaryPath: filepath.Join(dir, "AzureArc.csv"),
		CacheSize:     8,
		Log:           logger.Config{Level: "error"},
		Columns:       models.DefaultColumns(),
		Filters:       models.DefaultStaticRules(),
	}
	WriteWorkbook(t, cfg.PrimaryPath, Sheet, CMDBRows)
	require.NoError(t, os.WriteFile(cfg.SecondaryPath, []byte(AgentCSV), 0o600))
	return cfg
}

// ExpectedSummary is the unfiltered summary of the fixtures.
var ExpectedSummary = report.Summary{Total: 4, WithAgent: 2, WithoutAgent: 2, CompliancePct: 50}
