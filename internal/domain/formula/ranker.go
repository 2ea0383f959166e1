package formula

import (
	"sort"

	"github.com/herbwise/fangmatch/internal/domain/herb"
)

// Rank compares the input against every formula in the database snapshot
// and returns the non-nil results sorted by score descending.  The sort is
// stable, so ties keep database order, which makes test output
// deterministic.  After sorting, the single best result is checked for a
// combined formula: when its leftover herbs themselves explain a second
// formula, the top result is annotated with IsCombined and CombinedWith.
// Rank never returns an error and does not mutate the snapshot.
func (m *Matcher) Rank(input []herb.Entry, database []*StandardFormula) []*MatchResult {
	if len(input) == 0 {
		return nil
	}

	results := make([]*MatchResult, 0, len(database))
	for _, f := range database {
		if r := m.Compare(input, f); r != nil {
			results = append(results, r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > 0 {
		m.detectCombined(results[0], database)
	}
	return results
}

// detectCombined runs the second pass of combined-formula detection: the
// top result's additional herbs are ranked as a fresh input against the
// database minus the top formula itself.  The best secondary candidate
// marks the top result as combined when it explains at least
// CombinedMinExplained leftover herbs, or all of them.  One shot only; no
// recursion beyond this pass and no score adjustment.
func (m *Matcher) detectCombined(top *MatchResult, database []*StandardFormula) {
	leftovers := top.AdditionalHerbs
	if len(leftovers) < 2 {
		return
	}

	rest := make([]*StandardFormula, 0, len(database))
	for _, f := range database {
		if f == nil || f.Name == top.Formula.Name {
			continue
		}
		rest = append(rest, f)
	}

	secondary := make([]*MatchResult, 0, len(rest))
	for _, f := range rest {
		if r := m.Compare(leftovers, f); r != nil {
			secondary = append(secondary, r)
		}
	}
	if len(secondary) == 0 {
		return
	}
	sort.SliceStable(secondary, func(i, j int) bool {
		return secondary[i].Score > secondary[j].Score
	})

	candidate := secondary[0].Formula
	leftoverNames := herb.NameSet(leftovers)
	explained := 0
	for _, name := range candidate.Composition {
		if _, ok := leftoverNames[name]; ok {
			explained++
		}
	}
	if explained >= m.opts.CombinedMinExplained || explained == len(leftovers) {
		top.IsCombined = true
		top.CombinedWith = candidate.Name
	}
}

// Compare applies the default matcher to a single pair.
func Compare(input []herb.Entry, f *StandardFormula) *MatchResult {
	return NewMatcher(DefaultMatcherOptions()).Compare(input, f)
}

// Rank applies the default matcher to a full database snapshot.
func Rank(input []herb.Entry, database []*StandardFormula) []*MatchResult {
	return NewMatcher(DefaultMatcherOptions()).Rank(input, database)
}
