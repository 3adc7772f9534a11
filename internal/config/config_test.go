package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesaa/arcaudit/internal/models"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8501, cfg.Port)
	assert.Equal(t, "INFRASTRUCTURE", cfg.PrimarySheet)
	assert.Equal(t, "CMDB.xlsx", cfg.PrimaryPath)
	assert.Equal(t, models.DefaultColumns(), cfg.Columns)
	assert.Equal(t, models.DefaultStaticRules(), cfg.Filters)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ARCAUDIT_PORT", "9090")
	t.Setenv("ARCAUDIT_COLUMNS_HOSTNAME", "Nombre")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "Nombre", cfg.Columns.Hostname)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcaudit.yaml")
	yaml := `primary_sheet: INFRAESTRUCTURA
columns:
  os_family: Familia SO
  role: Capacidad Primaria
filters:
  role_keyword: Servidor
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INFRAESTRUCTURA", cfg.PrimarySheet)
	assert.Equal(t, "Familia SO", cfg.Columns.OSFamily)
	assert.Equal(t, "Capacidad Primaria", cfg.Columns.Role)
	assert.Equal(t, "Hostname", cfg.Columns.Hostname)
	assert.Equal(t, "Servidor", cfg.Filters.RoleKeyword)
	assert.Equal(t, "Windows", cfg.Filters.OSFamilyKeyword)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cache_size: 0\n"), 0o600))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "cache_size")
}
