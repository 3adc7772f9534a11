// Package report turns a merged inventory into the compliance report:
// summary metrics, chart slices, the agent status breakdown and the two
// detail tables, plus their spreadsheet and CSV-archive exports.
package report

import (
	"sort"

	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/pipeline"
	"github.com/vesaa/arcaudit/internal/table"
)

// Pie chart labels.
const (
	LabelWithAgent    = "With Agent"
	LabelWithoutAgent = "Without Agent"
)

// Summary holds the headline metrics.
type Summary struct {
	Total         int     `json:"total"`
	WithAgent     int     `json:"with_agent"`
	WithoutAgent  int     `json:"without_agent"`
	CompliancePct float64 `json:"compliance_pct"`
}

// Slice is one wedge of the with/without pie chart.
type Slice struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
}

// Headers are the column titles used by the detail tables and exports.
type Headers struct {
	Hostname     string `json:"hostname"`
	ManagementIP string `json:"management_ip"`
	Status       string `json:"status"`
}

// Report is the full rendered result of one pipeline run.
type Report struct {
	Summary      Summary              `json:"summary"`
	Pie          []Slice              `json:"pie"`
	Statuses     []models.StatusCount `json:"statuses"`
	WithAgent    []models.ServerRow   `json:"with_agent"`
	WithoutAgent []models.ServerRow   `json:"without_agent"`
	Headers      Headers              `json:"headers"`
}

// Compliance returns with/total as a percentage, or 0 for an empty inventory.
func Compliance(with, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(with) / float64(total) * 100
}

// statusColumn resolves the agent status column; ok is false when the agent
// export carries none, in which case every status is null.
func statusColumn(m *pipeline.Merged, cols models.Columns) (string, bool) {
	return m.RightColumn(cols.AgentStatus)
}

// Summarize counts the merged rows with and without an installed agent.
func Summarize(m *pipeline.Merged, cols models.Columns) Summary {
	s := Summary{Total: m.Len()}
	if col, ok := statusColumn(m, cols); ok {
		idx := m.Table.Index(col)
		for _, row := range m.Table.Rows {
			if models.HasAgent(row[idx]) {
				s.WithAgent++
			}
		}
	}
	s.WithoutAgent = s.Total - s.WithAgent
	s.CompliancePct = Compliance(s.WithAgent, s.Total)
	return s
}

// Build computes every section of the report.
func Build(m *pipeline.Merged, cols models.Columns) (*Report, error) {
	hostCol, ok := m.LeftColumn(cols.Hostname)
	if !ok {
		return nil, &models.MissingColumnError{Table: "merged", Columns: []string{cols.Hostname}}
	}
	ipCol, ok := m.LeftColumn(cols.ManagementIP)
	if !ok {
		return nil, &models.MissingColumnError{Table: "merged", Columns: []string{cols.ManagementIP}}
	}
	hostIdx, ipIdx, statusIdx := m.Table.Index(hostCol), m.Table.Index(ipCol), -1
	if col, ok := statusColumn(m, cols); ok {
		statusIdx = m.Table.Index(col)
	}

	r := &Report{
		Summary:      Summarize(m, cols),
		WithAgent:    []models.ServerRow{},
		WithoutAgent: []models.ServerRow{},
		Headers: Headers{
			Hostname:     cols.Hostname,
			ManagementIP: cols.ManagementIP,
			Status:       cols.AgentStatus,
		},
	}
	r.Pie = []Slice{
		{Label: LabelWithAgent, Value: r.Summary.WithAgent, Percent: r.Summary.CompliancePct},
		{Label: LabelWithoutAgent, Value: r.Summary.WithoutAgent, Percent: Compliance(r.Summary.WithoutAgent, r.Summary.Total)},
	}

	counts := make(map[string]int)
	for _, row := range m.Table.Rows {
		status := table.Null
		if statusIdx >= 0 {
			status = row[statusIdx]
		}
		counts[status.Or(models.NotInstalledLabel)]++

		line := models.ServerRow{Hostname: row[hostIdx].String, ManagementIP: row[ipIdx].String}
		if models.HasAgent(status) {
			line.Status = status.String
			r.WithAgent = append(r.WithAgent, line)
		} else {
			r.WithoutAgent = append(r.WithoutAgent, line)
		}
	}
	r.Statuses = breakdown(counts)
	return r, nil
}

// breakdown orders status counts by count descending, then label.
func breakdown(counts map[string]int) []models.StatusCount {
	out := make([]models.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, models.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// WithAgentRecords renders the with-agent detail table, header first.
func (r *Report) WithAgentRecords() [][]string {
	out := [][]string{{r.Headers.Hostname, r.Headers.ManagementIP, r.Headers.Status}}
	for _, s := range r.WithAgent {
		out = append(out, []string{s.Hostname, s.ManagementIP, s.Status})
	}
	return out
}

// WithoutAgentRecords renders the without-agent detail table, header first.
func (r *Report) WithoutAgentRecords() [][]string {
	out := [][]string{{r.Headers.Hostname, r.Headers.ManagementIP}}
	for _, s := range r.WithoutAgent {
		out = append(out, []string{s.Hostname, s.ManagementIP})
	}
	return out
}
