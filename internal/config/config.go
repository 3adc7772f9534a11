// Package config provides configuration management for arcaudit.
// It uses Viper to load settings from files, environment variables and defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vesaa/arcaudit/internal/logger"
	"github.com/vesaa/arcaudit/internal/models"
)

// Config holds all runtime configuration for arcaudit.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────────────
	ServerHost string `mapstructure:"server_host"`
	Port       int    `mapstructure:"port"`

	// ── Sources ──────────────────────────────────────────────────────────────
	// PrimaryPath is the CMDB workbook; PrimarySheet holds its asset list.
	PrimaryPath   string `mapstructure:"primary_path"`
	PrimarySheet  string `mapstructure:"primary_sheet"`
	SecondaryPath string `mapstructure:"secondary_path"`

	// CacheSize bounds both the parsed-source cache and the stage cache.
	CacheSize int `mapstructure:"cache_size"`

	Log     logger.Config      `mapstructure:"log"`
	Columns models.Columns     `mapstructure:"columns"`
	Filters models.StaticRules `mapstructure:"filters"`
}

// Load reads config from file (./config.yaml or ~/.arcaudit/config.yaml)
// and falls back to defaults. Environment variables with prefix ARCAUDIT_
// override file values, e.g. ARCAUDIT_COLUMNS_HOSTNAME.
func Load() (*Config, error) {
	return load(viper.New(), true)
}

func load(v *viper.Viper, searchPaths bool) (*Config, error) {
	// --- Defaults ---
	v.SetDefault("server_host", "127.0.0.1")
	v.SetDefault("port", 8501)
	v.SetDefault("primary_path", "CMDB.xlsx")
	v.SetDefault("primary_sheet", "INFRASTRUCTURE")
	v.SetDefault("secondary_path", "AzureArc.csv")
	v.SetDefault("cache_size", 16)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")

	cols := models.DefaultColumns()
	v.SetDefault("columns.hostname", cols.Hostname)
	v.SetDefault("columns.os_family", cols.OSFamily)
	v.SetDefault("columns.role", cols.Role)
	v.SetDefault("columns.os", cols.OS)
	v.SetDefault("columns.state", cols.State)
	v.SetDefault("columns.environment", cols.Environment)
	v.SetDefault("columns.location", cols.Location)
	v.SetDefault("columns.management_ip", cols.ManagementIP)
	v.SetDefault("columns.host_name", cols.HostName)
	v.SetDefault("columns.name", cols.Name)
	v.SetDefault("columns.agent_status", cols.AgentStatus)
	v.SetDefault("columns.join_key", cols.JoinKey)
	v.SetDefault("columns.left_suffix", cols.LeftSuffix)
	v.SetDefault("columns.right_suffix", cols.RightSuffix)

	rules := models.DefaultStaticRules()
	v.SetDefault("filters.os_family_keyword", rules.OSFamilyKeyword)
	v.SetDefault("filters.role_keyword", rules.RoleKeyword)

	// --- Config file ---
	if searchPaths {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.arcaudit")
	}
	if err := v.ReadInConfig(); err != nil {
		// config file is optional; ignore "not found" errors
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// --- Environment Variables ---
	v.SetEnvPrefix("ARCAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads config from an explicit file path instead of the search path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, false)
}

func (c *Config) validate() error {
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.Columns.Hostname == "" || c.Columns.JoinKey == "" {
		return fmt.Errorf("columns.hostname and columns.join_key must not be empty")
	}
	if c.Columns.LeftSuffix == c.Columns.RightSuffix {
		return fmt.Errorf("columns.left_suffix and columns.right_suffix must differ")
	}
	return nil
}
