package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ahrav/go-tally/internal/domain"
)

// Table renders results as a bordered text table for terminals.
type Table struct{}

var _ Renderer = Table{}

// RenderReport implements Renderer.
func (Table) RenderReport(w io.Writer, report domain.ScoreReport) error {
	criteria := reportCriteria(report)

	header := make([]string, 0, len(criteria)+2)
	header = append(header, "Option")
	for _, c := range criteria {
		header = append(header, fmt.Sprintf("%s (w=%d)", displayName(c.Name, c.ID), c.Weight))
	}
	header = append(header, "Total")

	return writeTable(w, header, reportRows(report, criteria))
}

// RenderShares implements Renderer.
func (Table) RenderShares(w io.Writer, shares []domain.WeightShare) error {
	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, []string{
			displayName(s.Criterion.Name, s.Criterion.ID),
			fmt.Sprintf("%d", s.Criterion.Weight),
			shareCell(s),
		})
	}
	return writeTable(w, []string{"Criterion", "Weight", "Share"}, rows)
}

// writeTable appends the header as the first row, followed by rows.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	if err := table.Append(header); err != nil {
		return fmt.Errorf("append header row: %w", err)
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}
