package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.SnapshotSource = (*SnapshotLoader)(nil)

// maxSuggestionDistance caps the edit distance of "did you mean" hints.
const maxSuggestionDistance = 3

// SnapshotLoader parses, validates, and caches YAML decision snapshots.
// Rating values are checked against the configured score range here, so
// the engine itself never bound-checks scores.
type SnapshotLoader struct {
	// validator performs struct field validation of snapshot documents.
	validator *validator.Validate
	// minScore and maxScore bound every rating value, inclusive.
	minScore int
	maxScore int
	// cache stores parsed snapshots indexed by the SHA256 hash of the
	// normalized document. Entries are cloned on the way out.
	cache   map[string]parsedSnapshot
	cacheMu sync.RWMutex
	// sf prevents duplicate parsing when several goroutines load the same
	// document at once.
	sf singleflight.Group
}

type parsedSnapshot struct {
	decision domain.DecisionAggregate
	ratings  []domain.Rating
}

// NewSnapshotLoader creates a loader accepting rating values within
// [cfg.MinScore, cfg.MaxScore].
func NewSnapshotLoader(cfg ScoringConfig) (*SnapshotLoader, error) {
	if cfg.MaxScore < cfg.MinScore {
		return nil, fmt.Errorf("%w: max score %d below min score %d", ports.ErrInvalidConfig, cfg.MaxScore, cfg.MinScore)
	}
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return &SnapshotLoader{
		validator: v,
		minScore:  cfg.MinScore,
		maxScore:  cfg.MaxScore,
		cache:     make(map[string]parsedSnapshot),
	}, nil
}

// Load implements ports.SnapshotSource by reading the snapshot file at ref.
func (sl *SnapshotLoader) Load(ctx context.Context, ref string) (domain.DecisionAggregate, []domain.Rating, error) {
	snap, err := sl.LoadFromFile(ctx, ref)
	if err != nil {
		return domain.DecisionAggregate{}, nil, err
	}
	return snap.Decision, snap.Ratings, nil
}

// LoadFromFile loads a snapshot from a YAML file. A missing file is
// reported as ports.ErrSnapshotNotFound.
func (sl *SnapshotLoader) LoadFromFile(ctx context.Context, path string) (Snapshot, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, ports.NewSnapshotError(path, "read", fmt.Errorf("%w: %v", ports.ErrSnapshotNotFound, err))
		}
		return Snapshot{}, ports.NewSnapshotError(path, "read", err)
	}
	return sl.load(ctx, path, data)
}

// LoadFromReader loads a snapshot from r. ref labels errors and the
// returned Snapshot.
func (sl *SnapshotLoader) LoadFromReader(ctx context.Context, ref string, r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, ports.NewSnapshotError(ref, "read", err)
	}
	return sl.load(ctx, ref, data)
}

func (sl *SnapshotLoader) load(ctx context.Context, ref string, data []byte) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	doc, err := sl.parseYAML(data)
	if err != nil {
		return Snapshot{}, ports.NewSnapshotError(ref, "parse", err)
	}

	hash, err := documentHash(doc)
	if err != nil {
		return Snapshot{}, ports.NewSnapshotError(ref, "hash", err)
	}

	v, err, _ := sl.sf.Do(hash, func() (any, error) {
		if cached, ok := sl.cached(hash); ok {
			return cached, nil
		}

		if err := sl.validate(doc); err != nil {
			return nil, err
		}

		parsed, err := sl.convert(doc)
		if err != nil {
			return nil, err
		}

		sl.cacheMu.Lock()
		sl.cache[hash] = parsed
		sl.cacheMu.Unlock()
		return parsed, nil
	})
	if err != nil {
		return Snapshot{}, ports.NewSnapshotError(ref, "validate", err)
	}

	parsed := v.(parsedSnapshot)
	return Snapshot{
		Ref:      ref,
		Decision: cloneAggregate(parsed.decision),
		Ratings:  slices.Clone(parsed.ratings),
	}, nil
}

// parseYAML decodes strictly so misspelled keys are not silently ignored.
func (sl *SnapshotLoader) parseYAML(data []byte) (*SnapshotDocument, error) {
	var doc SnapshotDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &doc, nil
}

// validate runs struct validation, then the semantic rules that span
// entities. Semantic failures are collected into one *domain.ValidationError
// wrapping ports.ErrInvalidSnapshot.
func (sl *SnapshotLoader) validate(doc *SnapshotDocument) error {
	if err := sl.validator.Struct(doc); err != nil {
		return fmt.Errorf("%w: struct validation failed: %v", ports.ErrInvalidSnapshot, err)
	}

	verr := domain.NewValidationError("snapshot")
	verr.Err = ports.ErrInvalidSnapshot

	criterionIDs := make([]string, 0, len(doc.Criteria))
	seenCriteria := make(map[string]struct{}, len(doc.Criteria))
	for _, c := range doc.Criteria {
		if _, dup := seenCriteria[c.ID]; dup {
			verr.AddError(fmt.Sprintf("duplicate criterion ID %q", c.ID))
			continue
		}
		seenCriteria[c.ID] = struct{}{}
		criterionIDs = append(criterionIDs, c.ID)
	}

	optionIDs := make([]string, 0, len(doc.Options))
	seenOptions := make(map[string]struct{}, len(doc.Options))
	for _, o := range doc.Options {
		if _, dup := seenOptions[o.ID]; dup {
			verr.AddError(fmt.Sprintf("duplicate option ID %q", o.ID))
			continue
		}
		seenOptions[o.ID] = struct{}{}
		optionIDs = append(optionIDs, o.ID)
	}

	seenRatings := make(map[string]struct{}, len(doc.Ratings))
	for i, r := range doc.Ratings {
		if r.ID != "" {
			if _, dup := seenRatings[r.ID]; dup {
				verr.AddError(fmt.Sprintf("duplicate rating ID %q", r.ID))
			}
			seenRatings[r.ID] = struct{}{}
		}
		// References into an empty list are left for the engine, which
		// reports the missing options or criteria by name.
		if _, ok := seenOptions[r.OptionID]; !ok && len(optionIDs) > 0 {
			verr.AddError(fmt.Sprintf("rating %d references unknown option %q%s", i, r.OptionID, suggest(r.OptionID, optionIDs)))
		}
		if _, ok := seenCriteria[r.CriterionID]; !ok && len(criterionIDs) > 0 {
			verr.AddError(fmt.Sprintf("rating %d references unknown criterion %q%s", i, r.CriterionID, suggest(r.CriterionID, criterionIDs)))
		}
		if r.Value < sl.minScore || r.Value > sl.maxScore {
			verr.AddError(fmt.Sprintf("rating %d value %d outside [%d, %d]", i, r.Value, sl.minScore, sl.maxScore))
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// convert maps a validated document onto domain types. Criteria and options
// inherit the decision ID; ratings inherit it unless they name their own.
func (sl *SnapshotLoader) convert(doc *SnapshotDocument) (parsedSnapshot, error) {
	decisionID := doc.Decision.ID

	criteria := make([]domain.Criterion, 0, len(doc.Criteria))
	for _, c := range doc.Criteria {
		criteria = append(criteria, domain.Criterion{
			ID:         c.ID,
			DecisionID: decisionID,
			Name:       c.Name,
			Weight:     c.Weight,
		})
	}

	options := make([]domain.Option, 0, len(doc.Options))
	for _, o := range doc.Options {
		options = append(options, domain.Option{
			ID:         o.ID,
			DecisionID: decisionID,
			Name:       o.Name,
			Notes:      o.Notes,
		})
	}

	aggregate, err := domain.NewDecisionAggregate(decisionID, criteria, options)
	if err != nil {
		return parsedSnapshot{}, err
	}

	ratings := make([]domain.Rating, 0, len(doc.Ratings))
	for _, r := range doc.Ratings {
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		ratingDecision := r.Decision
		if ratingDecision == "" {
			ratingDecision = decisionID
		}
		ratings = append(ratings, domain.Rating{
			ID:          id,
			DecisionID:  ratingDecision,
			OptionID:    r.OptionID,
			CriterionID: r.CriterionID,
			RaterID:     r.RaterID,
			Value:       r.Value,
			CreatedAt:   r.CreatedAt,
		})
	}

	return parsedSnapshot{decision: aggregate, ratings: ratings}, nil
}

// suggest returns a ` (did you mean "x"?)` hint naming the candidate
// closest to target under case-insensitive edit distance, or "" when none
// is close enough.
func suggest(target string, candidates []string) string {
	caser := cases.Fold()
	folded := caser.String(target)

	best, bestDistance := "", maxSuggestionDistance+1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(folded, caser.String(c))
		if d < bestDistance {
			best, bestDistance = c, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

// documentHash computes the SHA256 of the re-encoded document, so
// formatting differences in the source do not defeat the cache.
func documentHash(doc *SnapshotDocument) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode snapshot for hashing: %w", err)
	}
	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (sl *SnapshotLoader) cached(hash string) (parsedSnapshot, bool) {
	sl.cacheMu.RLock()
	defer sl.cacheMu.RUnlock()
	p, ok := sl.cache[hash]
	return p, ok
}

// ClearCache drops every cached snapshot.
func (sl *SnapshotLoader) ClearCache() {
	sl.cacheMu.Lock()
	defer sl.cacheMu.Unlock()
	sl.cache = make(map[string]parsedSnapshot)
}

func cloneAggregate(a domain.DecisionAggregate) domain.DecisionAggregate {
	a.Criteria = slices.Clone(a.Criteria)
	a.Options = slices.Clone(a.Options)
	return a
}
