package render

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/ahrav/go-tally/internal/domain"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON renders results as JSON documents. Decimals are encoded as strings
// with two fractional digits so no precision is lost to float parsing.
type JSON struct {
	// Indent pretty-prints the output with two-space indentation.
	Indent bool
}

var _ Renderer = JSON{}

type jsonReport struct {
	DecisionID string      `json:"decision_id"`
	Totals     []jsonTotal `json:"totals"`
	Scores     []jsonScore `json:"scores"`
}

type jsonTotal struct {
	OptionID string `json:"option_id"`
	Option   string `json:"option"`
	Total    string `json:"total"`
}

type jsonScore struct {
	OptionID    string `json:"option_id"`
	CriterionID string `json:"criterion_id"`
	Weight      int    `json:"weight"`
	Value       string `json:"value"`
	Raters      int    `json:"raters"`
}

type jsonShare struct {
	CriterionID string `json:"criterion_id"`
	Criterion   string `json:"criterion"`
	Weight      int    `json:"weight"`
	Percent     *int   `json:"percent"`
}

// RenderReport implements Renderer.
func (j JSON) RenderReport(w io.Writer, report domain.ScoreReport) error {
	doc := jsonReport{
		DecisionID: report.DecisionID,
		Totals:     make([]jsonTotal, 0, len(report.Totals)),
		Scores:     make([]jsonScore, 0, len(report.Scores)),
	}
	for _, t := range report.Totals {
		doc.Totals = append(doc.Totals, jsonTotal{
			OptionID: t.Option.ID,
			Option:   t.Option.Name,
			Total:    t.Total.StringFixed(2),
		})
	}
	for _, s := range report.Scores {
		doc.Scores = append(doc.Scores, jsonScore{
			OptionID:    s.Option.ID,
			CriterionID: s.Criterion.ID,
			Weight:      s.Criterion.Weight,
			Value:       s.Value.StringFixed(2),
			Raters:      s.Raters,
		})
	}
	return j.encode(w, doc)
}

// RenderShares implements Renderer. Criteria without a computable share
// have a null percent.
func (j JSON) RenderShares(w io.Writer, shares []domain.WeightShare) error {
	doc := make([]jsonShare, 0, len(shares))
	for _, s := range shares {
		entry := jsonShare{
			CriterionID: s.Criterion.ID,
			Criterion:   s.Criterion.Name,
			Weight:      s.Criterion.Weight,
		}
		if s.OK {
			pct := s.Percent
			entry.Percent = &pct
		}
		doc = append(doc, entry)
	}
	return j.encode(w, doc)
}

func (j JSON) encode(w io.Writer, v any) error {
	enc := jsonAPI.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
