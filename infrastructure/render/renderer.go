// Package render formats score reports and weight shares for people and
// for downstream tools. Every decimal is written with exactly two
// fractional digits.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// Output formats accepted by ForFormat.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// unratedCell marks an (option, criterion) pair nobody rated.
const unratedCell = "-"

// Renderer writes computed results to w.
type Renderer interface {
	// RenderReport writes one row per option: its weighted score for each
	// criterion followed by its normalized total.
	RenderReport(w io.Writer, report domain.ScoreReport) error

	// RenderShares writes each criterion with its weight and display share.
	RenderShares(w io.Writer, shares []domain.WeightShare) error
}

// ForFormat returns the Renderer for format. Matching is case-insensitive.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTable, "":
		return Table{}, nil
	case FormatCSV:
		return CSV{}, nil
	case FormatJSON:
		return JSON{Indent: true}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ports.ErrUnsupportedFormat, format)
	}
}

// SupportedFormats lists the formats ForFormat accepts.
func SupportedFormats() []string {
	return []string{FormatTable, FormatCSV, FormatJSON}
}

// reportCriteria returns the criteria of report in column order. Scores are
// option-major, so the first option's scores carry every criterion once.
func reportCriteria(report domain.ScoreReport) []domain.Criterion {
	if len(report.Totals) == 0 {
		return nil
	}
	scores := report.ScoresFor(report.Totals[0].Option.ID)
	criteria := make([]domain.Criterion, 0, len(scores))
	for _, s := range scores {
		criteria = append(criteria, s.Criterion)
	}
	return criteria
}

// reportRows flattens report into one row of cells per option, in the
// report's option order: option name, one cell per criterion, total.
func reportRows(report domain.ScoreReport, criteria []domain.Criterion) [][]string {
	rows := make([][]string, 0, len(report.Totals))
	for _, total := range report.Totals {
		row := make([]string, 0, len(criteria)+2)
		row = append(row, displayName(total.Option.Name, total.Option.ID))

		byCriterion := make(map[string]domain.WeightedScore, len(criteria))
		for _, s := range report.ScoresFor(total.Option.ID) {
			byCriterion[s.Criterion.ID] = s
		}
		for _, c := range criteria {
			s, ok := byCriterion[c.ID]
			if !ok || s.Raters == 0 {
				row = append(row, unratedCell)
				continue
			}
			row = append(row, s.Value.StringFixed(2))
		}

		row = append(row, total.Total.StringFixed(2))
		rows = append(rows, row)
	}
	return rows
}

func shareCell(share domain.WeightShare) string {
	if !share.OK {
		return unratedCell
	}
	return fmt.Sprintf("%d%%", share.Percent)
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
