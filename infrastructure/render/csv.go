package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ahrav/go-tally/internal/domain"
)

// CSV renders results as RFC 4180 records with a header line. Each report
// row starts with the decision ID so the output of several reports can be
// concatenated.
type CSV struct{}

var _ Renderer = CSV{}

// RenderReport implements Renderer.
func (CSV) RenderReport(w io.Writer, report domain.ScoreReport) error {
	criteria := reportCriteria(report)

	header := make([]string, 0, len(criteria)+4)
	header = append(header, "decision_id", "option_id", "option")
	for _, c := range criteria {
		header = append(header, c.ID)
	}
	header = append(header, "total")

	records := make([][]string, 0, len(report.Totals)+1)
	records = append(records, header)
	for i, row := range reportRows(report, criteria) {
		record := make([]string, 0, len(row)+2)
		record = append(record, report.DecisionID, report.Totals[i].Option.ID)
		record = append(record, row...)
		records = append(records, record)
	}

	return writeCSV(w, records)
}

// RenderShares implements Renderer.
func (CSV) RenderShares(w io.Writer, shares []domain.WeightShare) error {
	records := make([][]string, 0, len(shares)+1)
	records = append(records, []string{"criterion_id", "criterion", "weight", "share_percent"})
	for _, s := range shares {
		pct := ""
		if s.OK {
			pct = strconv.Itoa(s.Percent)
		}
		records = append(records, []string{
			s.Criterion.ID,
			s.Criterion.Name,
			strconv.Itoa(s.Criterion.Weight),
			pct,
		})
	}
	return writeCSV(w, records)
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
