// Package models defines the shared data types for arcaudit: the column
// layout of both inventories, agent status values, report rows and the
// pipeline error taxonomy.
package models

// Columns names every column the pipeline reads or derives. Export files use
// locale-specific headers, so all of these come from configuration.
type Columns struct {
	// ── CMDB (primary) ───────────────────────────────────────────────────────
	Hostname     string `mapstructure:"hostname"`
	OSFamily     string `mapstructure:"os_family"`
	Role         string `mapstructure:"role"` // "primary capacity" of the asset
	OS           string `mapstructure:"os"`
	State        string `mapstructure:"state"`
	Environment  string `mapstructure:"environment"`
	Location     string `mapstructure:"location"`
	ManagementIP string `mapstructure:"management_ip"`

	// ── Agent inventory (secondary) ──────────────────────────────────────────
	// HostName wins per row; Name is the fallback when HostName is empty.
	HostName    string `mapstructure:"host_name"`
	Name        string `mapstructure:"name"`
	AgentStatus string `mapstructure:"agent_status"`

	// JoinKey is derived on the secondary table by the normalizer.
	JoinKey string `mapstructure:"join_key"`

	// Suffixes applied to colliding column names after the join.
	LeftSuffix  string `mapstructure:"left_suffix"`
	RightSuffix string `mapstructure:"right_suffix"`
}

// DefaultColumns returns the column layout of the stock CMDB and agent exports.
func DefaultColumns() Columns {
	return Columns{
		Hostname:     "Hostname",
		OSFamily:     "OS Family",
		Role:         "Primary Capacity",
		OS:           "Operating System",
		State:        "Operational State",
		Environment:  "Environment",
		Location:     "Location",
		ManagementIP: "Management IP",
		HostName:     "HOST NAME",
		Name:         "NAME",
		AgentStatus:  "ARC AGENT STATUS",
		JoinKey:      "Hostname_combined",
		LeftSuffix:   "_cmdb",
		RightSuffix:  "_arc",
	}
}

// StaticRules are the fixed scope predicates applied to every CMDB export.
// Both keywords match as case-insensitive substrings.
type StaticRules struct {
	OSFamilyKeyword string `mapstructure:"os_family_keyword"`
	RoleKeyword     string `mapstructure:"role_keyword"`
}

// DefaultStaticRules scopes the report to Windows servers.
func DefaultStaticRules() StaticRules {
	return StaticRules{OSFamilyKeyword: "Windows", RoleKeyword: "Server"}
}
