package models

import "github.com/vesaa/arcaudit/internal/table"

// AgentStatus is the reporting state of a host's agent as exported by the
// management plane.
type AgentStatus string

const (
	AgentConnected AgentStatus = "Connected"
	AgentExpired   AgentStatus = "Expired"
	AgentOffline   AgentStatus = "Offline"
)

// NotInstalledLabel replaces a null agent status in the status breakdown.
const NotInstalledLabel = "not installed / not applicable"

// HasAgent reports whether status counts as an installed agent. Expired and
// Offline agents are still installed; anything else, including null, is not.
func HasAgent(status table.Value) bool {
	if !status.Valid {
		return false
	}
	switch AgentStatus(status.String) {
	case AgentConnected, AgentExpired, AgentOffline:
		return true
	}
	return false
}

// ServerRow is one line of a report detail table. Status is empty in the
// without-agent table.
type ServerRow struct {
	Hostname     string `json:"hostname"`
	ManagementIP string `json:"management_ip"`
	Status       string `json:"status,omitempty"`
}

// StatusCount is one line of the agent status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
