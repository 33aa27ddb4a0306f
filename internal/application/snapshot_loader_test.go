package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

const laptopSnapshot = `
decision:
  id: laptop
  name: Team laptop
criteria:
  - {id: performance, name: Performance, weight: 5}
  - {id: cost, name: Cost, weight: 3}
options:
  - {id: alpha, name: Alpha}
  - {id: beta, name: Beta, notes: refurbished}
ratings:
  - {id: r1, option: alpha, criterion: performance, rater: ana, value: 10}
  - {id: r2, option: alpha, criterion: performance, rater: ben, value: 8}
  - {id: r3, option: alpha, criterion: cost, rater: ana, value: 6}
  - {option: beta, criterion: cost, rater: ben, value: 4, created_at: 2024-03-01T10:00:00Z}
`

func newTestLoader(t *testing.T) *SnapshotLoader {
	t.Helper()
	loader, err := NewSnapshotLoader(DefaultConfig().Scoring)
	require.NoError(t, err)
	return loader
}

func TestSnapshotLoader_LoadFromReader(t *testing.T) {
	loader := newTestLoader(t)

	snap, err := loader.LoadFromReader(context.Background(), "laptop.yaml", strings.NewReader(laptopSnapshot))
	require.NoError(t, err)

	assert.Equal(t, "laptop.yaml", snap.Ref)
	assert.Equal(t, "laptop", snap.Decision.DecisionID)
	require.Len(t, snap.Decision.Criteria, 2)
	assert.Equal(t, domain.Criterion{ID: "performance", DecisionID: "laptop", Name: "Performance", Weight: 5}, snap.Decision.Criteria[0])
	require.Len(t, snap.Decision.Options, 2)
	assert.Equal(t, "refurbished", snap.Decision.Options[1].Notes)
	assert.Equal(t, "laptop", snap.Decision.Options[1].DecisionID)

	require.Len(t, snap.Ratings, 4)
	assert.Equal(t, "r1", snap.Ratings[0].ID)
	assert.Equal(t, "laptop", snap.Ratings[0].DecisionID)
	assert.Equal(t, "ana", snap.Ratings[0].RaterID)
	assert.Equal(t, 10, snap.Ratings[0].Value)

	generated := snap.Ratings[3]
	_, parseErr := uuid.Parse(generated.ID)
	assert.NoError(t, parseErr, "missing rating IDs are filled with UUIDs")
	assert.Equal(t, 2024, generated.CreatedAt.Year())
}

func TestSnapshotLoader_Validation(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantOp   string
		contains []string
	}{
		{
			name:     "unknown field",
			yaml:     "decision: {id: d}\nweights: []\n",
			wantOp:   "parse",
			contains: []string{"field weights not found"},
		},
		{
			name:     "missing decision id",
			yaml:     "decision: {name: nameless}\n",
			wantOp:   "validate",
			contains: []string{"ID"},
		},
		{
			name:     "negative weight",
			yaml:     "decision: {id: d}\ncriteria:\n  - {id: c, weight: -1}\n",
			wantOp:   "validate",
			contains: []string{"Weight"},
		},
		{
			name: "duplicate ids",
			yaml: `
decision: {id: d}
criteria:
  - {id: c, weight: 1}
  - {id: c, weight: 2}
options:
  - {id: o}
  - {id: o}
ratings:
  - {id: r, option: o, criterion: c, rater: u, value: 1}
  - {id: r, option: o, criterion: c, rater: v, value: 2}
`,
			wantOp:   "validate",
			contains: []string{`duplicate criterion ID "c"`, `duplicate option ID "o"`, `duplicate rating ID "r"`},
		},
		{
			name: "unknown references with suggestions",
			yaml: `
decision: {id: d}
criteria:
  - {id: performance, weight: 1}
options:
  - {id: alpha}
ratings:
  - {option: ALPAH, criterion: perfromance, rater: u, value: 1}
  - {option: zzzzzzzz, criterion: performance, rater: u, value: 1}
`,
			wantOp: "validate",
			contains: []string{
				`unknown option "ALPAH" (did you mean "alpha"?)`,
				`unknown criterion "perfromance" (did you mean "performance"?)`,
				`unknown option "zzzzzzzz"`,
			},
		},
		{
			name: "value out of range",
			yaml: `
decision: {id: d}
criteria:
  - {id: c, weight: 1}
options:
  - {id: o}
ratings:
  - {option: o, criterion: c, rater: u, value: 11}
  - {option: o, criterion: c, rater: v, value: -1}
`,
			wantOp:   "validate",
			contains: []string{"value 11 outside [0, 10]", "value -1 outside [0, 10]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newTestLoader(t)

			_, err := loader.LoadFromReader(context.Background(), "snap.yaml", strings.NewReader(tt.yaml))
			require.Error(t, err)

			var snapErr *ports.SnapshotError
			require.ErrorAs(t, err, &snapErr)
			assert.Equal(t, "snap.yaml", snapErr.Ref)
			assert.Equal(t, tt.wantOp, snapErr.Operation)
			if tt.wantOp == "validate" {
				assert.ErrorIs(t, err, ports.ErrInvalidSnapshot)
			}
			for _, want := range tt.contains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestSnapshotLoader_UnknownReferenceWithoutSuggestion(t *testing.T) {
	loader := newTestLoader(t)
	yaml := `
decision: {id: d}
criteria:
  - {id: c, weight: 1}
options:
  - {id: o}
ratings:
  - {option: something-else, criterion: c, rater: u, value: 1}
`
	_, err := loader.LoadFromReader(context.Background(), "snap.yaml", strings.NewReader(yaml))
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.NotContains(t, verr.Errors[0], "did you mean")
}

func TestSnapshotLoader_EmptyListsAreLeftToTheEngine(t *testing.T) {
	loader := newTestLoader(t)
	yaml := `
decision: {id: d}
criteria:
  - {id: c, weight: 1}
ratings:
  - {option: o, criterion: c, rater: u, value: 1}
`
	snap, err := loader.LoadFromReader(context.Background(), "snap.yaml", strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Empty(t, snap.Decision.Options)
	assert.Len(t, snap.Ratings, 1)
}

func TestSnapshotLoader_RatingDecisionOverride(t *testing.T) {
	loader := newTestLoader(t)
	yaml := `
decision: {id: d}
criteria:
  - {id: c, weight: 1}
options:
  - {id: o}
ratings:
  - {option: o, criterion: c, rater: u, value: 1, decision: other}
`
	snap, err := loader.LoadFromReader(context.Background(), "snap.yaml", strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, "other", snap.Ratings[0].DecisionID)
}

func TestSnapshotLoader_Cache(t *testing.T) {
	loader := newTestLoader(t)
	ctx := context.Background()

	first, err := loader.LoadFromReader(ctx, "a.yaml", strings.NewReader(laptopSnapshot))
	require.NoError(t, err)

	// Same content with different formatting hits the cache, so generated
	// rating IDs are stable.
	reformatted := strings.ReplaceAll(laptopSnapshot, "{id: alpha, name: Alpha}", "{ id: alpha,   name: Alpha }")
	second, err := loader.LoadFromReader(ctx, "b.yaml", strings.NewReader(reformatted))
	require.NoError(t, err)
	assert.Equal(t, "b.yaml", second.Ref)
	assert.Equal(t, first.Ratings[3].ID, second.Ratings[3].ID)

	// Returned slices are copies of the cached entry.
	second.Ratings[0].Value = 0
	second.Decision.Options[0].Name = "mutated"
	third, err := loader.LoadFromReader(ctx, "c.yaml", strings.NewReader(laptopSnapshot))
	require.NoError(t, err)
	assert.Equal(t, 10, third.Ratings[0].Value)
	assert.Equal(t, "Alpha", third.Decision.Options[0].Name)

	loader.ClearCache()
	fourth, err := loader.LoadFromReader(ctx, "d.yaml", strings.NewReader(laptopSnapshot))
	require.NoError(t, err)
	assert.NotEqual(t, first.Ratings[3].ID, fourth.Ratings[3].ID, "cleared cache regenerates IDs")
}

func TestSnapshotLoader_ConcurrentLoads(t *testing.T) {
	loader := newTestLoader(t)

	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := loader.LoadFromReader(context.Background(), "laptop.yaml", strings.NewReader(laptopSnapshot))
			if assert.NoError(t, err) {
				ids[i] = snap.Ratings[3].ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}

func TestSnapshotLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "laptop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(laptopSnapshot), 0o600))

	loader := newTestLoader(t)

	decision, ratings, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "laptop", decision.DecisionID)
	assert.Len(t, ratings, 4)

	_, _, err = loader.Load(context.Background(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrSnapshotNotFound))
}

func TestSnapshotLoader_CanceledContext(t *testing.T) {
	loader := newTestLoader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.LoadFromReader(ctx, "laptop.yaml", strings.NewReader(laptopSnapshot))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSnapshotLoader_InvalidRange(t *testing.T) {
	_, err := NewSnapshotLoader(ScoringConfig{MinScore: 5, MaxScore: 1, Concurrency: 1})
	assert.ErrorIs(t, err, ports.ErrInvalidConfig)
}

func TestSuggest(t *testing.T) {
	candidates := []string{"performance", "cost", "Battery"}

	assert.Equal(t, ` (did you mean "cost"?)`, suggest("cots", candidates))
	assert.Equal(t, ` (did you mean "Battery"?)`, suggest("battery", candidates))
	assert.Equal(t, "", suggest("warranty-length", candidates))
	assert.Equal(t, "", suggest("x", nil))
}
