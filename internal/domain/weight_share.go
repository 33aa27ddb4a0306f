package domain

import "github.com/shopspring/decimal"

// WeightShare is the display share of a single criterion's weight among all
// criteria of its decision. OK is false when no share can be computed.
type WeightShare struct {
	Criterion Criterion `json:"criterion"`
	Percent   int       `json:"percent"`
	OK        bool      `json:"ok"`
}

var hundred = decimal.NewFromInt(100)

// WeightSharePercent returns the percentage, rounded half-up to an integer,
// that criterion's weight represents among allCriteria. It reports false
// when allCriteria is empty or their weights sum to zero.
//
// Shares are rounded independently, so the shares of one decision need not
// sum to exactly 100.
func WeightSharePercent(criterion Criterion, allCriteria []Criterion) (int, bool) {
	if len(allCriteria) == 0 {
		return 0, false
	}

	total := int64(0)
	for _, c := range allCriteria {
		total += int64(c.Weight)
	}
	if total == 0 {
		return 0, false
	}

	share := decimal.NewFromInt(int64(criterion.Weight)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(total), 0)
	return int(share.IntPart()), true
}

// WeightShares computes the share of every criterion in criteria order.
func WeightShares(criteria []Criterion) []WeightShare {
	shares := make([]WeightShare, len(criteria))
	for i, c := range criteria {
		pct, ok := WeightSharePercent(c, criteria)
		shares[i] = WeightShare{Criterion: c, Percent: pct, OK: ok}
	}
	return shares
}
