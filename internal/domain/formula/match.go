package formula

import (
	"fmt"

	"github.com/herbwise/fangmatch/internal/domain/herb"
)

// MatchType classifies the relationship between an input herb set and a
// standard formula.
type MatchType string

const (
	// MatchExact means the input covers the formula exactly, with no
	// missing and no additional herbs.
	MatchExact MatchType = "exact"

	// MatchVariant means partial overlap: herbs missing from the input,
	// possibly with additions.
	MatchVariant MatchType = "variant"

	// MatchSubset means the formula is a subset of the input: fully
	// present, but the user typed extra herbs.
	MatchSubset MatchType = "subset"

	// MatchRatioMismatch means the herb sets match exactly but the dosage
	// ratios deviate significantly from the standard.
	MatchRatioMismatch MatchType = "ratio-mismatch"
)

// IsValid checks if the match type is one of the defined values.
func (t MatchType) IsValid() bool {
	switch t {
	case MatchExact, MatchVariant, MatchSubset, MatchRatioMismatch:
		return true
	default:
		return false
	}
}

// String returns the string representation of the match type.
func (t MatchType) String() string {
	return string(t)
}

// DosageAnalysis records the outcome of a ratio comparison.  It is attached
// only when a comparison was actually performed.
type DosageAnalysis struct {
	Similarity float64 `json:"similarity"`
	Details    string  `json:"details"`
}

// MatchResult is the outcome of comparing one input herb set against one
// standard formula.  Results are immutable after creation except for the
// two combined-formula fields, which the ranker sets at most once on the
// top result of a full database pass.
type MatchResult struct {
	// Formula references the compared formula.  Shared, not owned; the
	// result does not copy it.
	Formula *StandardFormula `json:"formula"`

	// Score is in [0,1], higher is better.
	Score float64 `json:"score"`

	MatchType MatchType `json:"match_type"`

	// MissingHerbs are composition names absent from the input.
	MissingHerbs []string `json:"missing_herbs"`

	// AdditionalHerbs are input entries outside the composition.
	AdditionalHerbs []herb.Entry `json:"additional_herbs"`

	// InputHerbs is the full input set, retained for display and diffing.
	InputHerbs []herb.Entry `json:"input_herbs"`

	DosageAnalysis *DosageAnalysis `json:"dosage_analysis,omitempty"`

	// IsCombined and CombinedWith annotate the top-ranked result when the
	// leftover herbs plausibly explain a second formula.
	IsCombined   bool   `json:"is_combined,omitempty"`
	CombinedWith string `json:"combined_with,omitempty"`
}

// Default matcher thresholds.  These are empirically chosen constants; the
// options struct exists so callers can tune them, not because better values
// are known.
const (
	// DefaultRecallWeight and DefaultPrecisionWeight combine the two
	// overlap fractions into the base score.  Recall weighs higher because
	// surfacing the right standard formula matters even when the user
	// typed a small partial list.
	DefaultRecallWeight    = 0.6
	DefaultPrecisionWeight = 0.4

	// DefaultRatioThreshold is the cosine similarity below which an exact
	// herb-set match is reclassified as a ratio mismatch.
	DefaultRatioThreshold = 0.85

	// DefaultNoiseInputSize and DefaultNoiseMaxOverlap define the noise
	// filter: inputs with more than NoiseInputSize herbs sharing at most
	// NoiseMaxOverlap herbs with a curated formula are rejected.  Small
	// inputs are exempt (treated as deliberate search by key herbs), as
	// are AI-identified candidates.
	DefaultNoiseInputSize  = 4
	DefaultNoiseMaxOverlap = 1

	// DefaultCombinedMinExplained is how many leftover herbs a secondary
	// formula must explain before the top result is marked combined.
	DefaultCombinedMinExplained = 2
)

// MatcherOptions carries the tunable thresholds of the matching engine.
type MatcherOptions struct {
	RecallWeight         float64
	PrecisionWeight      float64
	RatioThreshold       float64
	NoiseInputSize       int
	NoiseMaxOverlap      int
	CombinedMinExplained int
}

// DefaultMatcherOptions returns the standard thresholds.
func DefaultMatcherOptions() MatcherOptions {
	return MatcherOptions{
		RecallWeight:         DefaultRecallWeight,
		PrecisionWeight:      DefaultPrecisionWeight,
		RatioThreshold:       DefaultRatioThreshold,
		NoiseInputSize:       DefaultNoiseInputSize,
		NoiseMaxOverlap:      DefaultNoiseMaxOverlap,
		CombinedMinExplained: DefaultCombinedMinExplained,
	}
}

// Matcher compares parsed herb inputs against standard formulas.  A Matcher
// is stateless and safe for concurrent use.
type Matcher struct {
	opts MatcherOptions
}

// NewMatcher builds a matcher with the given options.  Zero-valued weight
// fields fall back to the defaults so an incomplete options struct does not
// silently produce all-zero scores.
func NewMatcher(opts MatcherOptions) *Matcher {
	def := DefaultMatcherOptions()
	if opts.RecallWeight == 0 && opts.PrecisionWeight == 0 {
		opts.RecallWeight = def.RecallWeight
		opts.PrecisionWeight = def.PrecisionWeight
	}
	if opts.RatioThreshold == 0 {
		opts.RatioThreshold = def.RatioThreshold
	}
	if opts.NoiseInputSize == 0 {
		opts.NoiseInputSize = def.NoiseInputSize
	}
	if opts.NoiseMaxOverlap == 0 {
		opts.NoiseMaxOverlap = def.NoiseMaxOverlap
	}
	if opts.CombinedMinExplained == 0 {
		opts.CombinedMinExplained = def.CombinedMinExplained
	}
	return &Matcher{opts: opts}
}

// Compare scores one input herb set against one formula.  A nil return
// means no meaningful relationship: either zero overlap, or a large input
// touching a curated formula on too few herbs to matter.  Compare never
// returns an error; a nil or empty formula simply does not match.
func (m *Matcher) Compare(input []herb.Entry, f *StandardFormula) *MatchResult {
	if f == nil || len(f.Composition) == 0 || len(input) == 0 {
		return nil
	}

	inputNames := herb.NameSet(input)
	var missing []string
	intersection := 0
	for _, name := range f.Composition {
		if _, ok := inputNames[name]; ok {
			intersection++
		} else {
			missing = append(missing, name)
		}
	}
	if intersection == 0 {
		return nil
	}
	if len(input) > m.opts.NoiseInputSize && intersection <= m.opts.NoiseMaxOverlap && !f.IsAIGenerated {
		return nil
	}

	comp := f.compositionSet()
	var additional []herb.Entry
	for _, e := range input {
		if _, ok := comp[e.Name]; !ok {
			additional = append(additional, e)
		}
	}

	recall := float64(intersection) / float64(len(f.Composition))
	precision := float64(intersection) / float64(len(input))
	score := m.opts.RecallWeight*recall + m.opts.PrecisionWeight*precision

	result := &MatchResult{
		Formula:         f,
		Score:           score,
		MatchType:       MatchVariant,
		MissingHerbs:    missing,
		AdditionalHerbs: additional,
		InputHerbs:      input,
	}

	switch {
	case len(missing) == 0 && len(additional) == 0:
		result.MatchType = MatchExact
		result.Score = 1.0
		m.checkDosageRatio(result, input, f)
	case len(missing) == 0:
		result.MatchType = MatchSubset
	}
	return result
}

// checkDosageRatio refines an exact match with the ratio comparison.  It
// runs only when every input entry carries a dosage and the formula declares
// a standard; otherwise the result stays exact with no analysis attached.
func (m *Matcher) checkDosageRatio(result *MatchResult, input []herb.Entry, f *StandardFormula) {
	if len(f.StandardDosage) == 0 {
		return
	}
	for _, e := range input {
		if !e.HasDosage() {
			return
		}
	}

	sim := RatioSimilarity(input, f.StandardDosage)
	if sim < m.opts.RatioThreshold {
		result.MatchType = MatchRatioMismatch
		result.Score *= sim
		result.DosageAnalysis = &DosageAnalysis{
			Similarity: sim,
			Details:    fmt.Sprintf("剂量比例与标准方存在显著偏差（相似度 %.2f）", sim),
		}
		return
	}
	result.DosageAnalysis = &DosageAnalysis{
		Similarity: sim,
		Details:    fmt.Sprintf("剂量比例与标准方高度一致（相似度 %.2f）", sim),
	}
}
