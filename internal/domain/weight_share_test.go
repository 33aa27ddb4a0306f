package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightSharePercent(t *testing.T) {
	criteria := func(weights ...int) []Criterion {
		out := make([]Criterion, len(weights))
		for i, w := range weights {
			out[i] = Criterion{ID: string(rune('a' + i)), Weight: w}
		}
		return out
	}

	tests := []struct {
		name    string
		index   int
		all     []Criterion
		want    int
		wantOK  bool
		subject *Criterion
	}{
		{name: "three of five", index: 0, all: criteria(3, 2), want: 60, wantOK: true},
		{name: "two of five", index: 1, all: criteria(3, 2), want: 40, wantOK: true},
		{name: "sole criterion", index: 0, all: criteria(7), want: 100, wantOK: true},
		{name: "zero weight among others", index: 1, all: criteria(4, 0), want: 0, wantOK: true},
		{name: "half rounds up", index: 0, all: criteria(1, 7), want: 13, wantOK: true},       // 12.5
		{name: "third rounds down", index: 0, all: criteria(1, 1, 1), want: 33, wantOK: true}, // 33.33
		{name: "two thirds rounds up", index: 0, all: criteria(2, 1), want: 67, wantOK: true}, // 66.67
		{name: "all weights zero", index: 0, all: criteria(0, 0), wantOK: false},
		{name: "empty criteria", all: nil, subject: &Criterion{ID: "x", Weight: 4}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject Criterion
			if tt.subject != nil {
				subject = *tt.subject
			} else {
				subject = tt.all[tt.index]
			}

			got, ok := WeightSharePercent(subject, tt.all)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// TestWeightShares_IndependentRounding documents that shares of one decision
// are rounded independently and may not sum to 100.
func TestWeightShares_IndependentRounding(t *testing.T) {
	all := []Criterion{{ID: "a", Weight: 1}, {ID: "b", Weight: 1}, {ID: "c", Weight: 1}}

	shares := WeightShares(all)

	sum := 0
	for _, s := range shares {
		assert.True(t, s.OK)
		assert.Equal(t, 33, s.Percent)
		sum += s.Percent
	}
	assert.Equal(t, 99, sum)
}

func TestWeightShares_NoValue(t *testing.T) {
	shares := WeightShares([]Criterion{{ID: "a"}, {ID: "b"}})
	for _, s := range shares {
		assert.False(t, s.OK)
	}
	assert.Empty(t, WeightShares(nil))
}
