package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// WriteText prints the summary and the agent status breakdown as terminal
// tables. Detail rows are left to the exports.
func WriteText(w io.Writer, r *Report) error {
	s := r.Summary
	summary := newTable("Metric", "Value").Rows(
		[]string{"Servers in scope", strconv.Itoa(s.Total)},
		[]string{LabelWithAgent, strconv.Itoa(s.WithAgent)},
		[]string{LabelWithoutAgent, strconv.Itoa(s.WithoutAgent)},
		[]string{"Compliance", fmt.Sprintf("%.2f%%", s.CompliancePct)},
	)

	statuses := newTable(r.Headers.Status, "Count")
	for _, sc := range r.Statuses {
		statuses.Row(sc.Status, strconv.Itoa(sc.Count))
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n\n%s\n%s\n",
		titleStyle.Render("Agent compliance"), summary.String(),
		titleStyle.Render("Agent status"), statuses.String())
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
