// Package formula implements the matching side of the engine: the standard
// formula model, the dosage-ratio scorer, the single-pair matcher, and the
// database ranker.  Everything here is pure and synchronous; a ranking pass
// reads an immutable snapshot and produces fresh results, so concurrent
// callers need no synchronization as long as the snapshot is not mutated
// in place (the catalog service publishes copies instead).
package formula

import (
	"github.com/herbwise/fangmatch/pkg/errors"
)

// StandardFormula is a reference entity in the formula database: a named,
// fixed composition of herbs with optional canonical dosage ratios.
type StandardFormula struct {
	// ID is an opaque stable identifier.
	ID string `json:"id"`

	// Name is the display name, unique within a database snapshot by
	// convention (not enforced by the engine).
	Name string `json:"name"`

	// Source is the canonical book or origin label.
	Source string `json:"source"`

	// Composition is the ordered list of canonical herb names.  It is
	// immutable once the formula enters a matching pass.  Duplicates are
	// not expected and not deduplicated here.
	Composition []string `json:"composition"`

	// StandardDosage optionally maps composition herbs to reference
	// amounts, used only for ratio comparison.
	StandardDosage map[string]float64 `json:"standard_dosage,omitempty"`

	// Descriptive fields, opaque to scoring.
	Usage       string `json:"usage,omitempty"`
	Effect      string `json:"effect,omitempty"`
	Indications string `json:"indications,omitempty"`
	Analysis    string `json:"analysis,omitempty"`

	// IsAIGenerated marks formulas sourced from the external
	// identification service rather than the curated database.  The only
	// behavioral difference is the noise-rejection exemption in Compare.
	IsAIGenerated bool `json:"is_ai_generated,omitempty"`
}

// Validate checks the invariants the catalog requires before accepting a
// formula.  The matching path never calls Validate; malformed formulas are
// simply unmatched.
func (f *StandardFormula) Validate() error {
	if f == nil {
		return errors.New(errors.ErrCodeValidation, "formula is nil")
	}
	if f.Name == "" {
		return errors.New(errors.ErrCodeFormulaInvalidName, "formula name must not be empty")
	}
	if len(f.Composition) == 0 {
		return errors.Newf(errors.ErrCodeFormulaEmptyComposition, "formula %q has no composition", f.Name)
	}
	comp := f.compositionSet()
	for name, amount := range f.StandardDosage {
		if amount < 0 {
			return errors.Newf(errors.ErrCodeFormulaInvalidDosage, "formula %q: negative dosage for %q", f.Name, name)
		}
		if _, ok := comp[name]; !ok {
			return errors.Newf(errors.ErrCodeFormulaInvalidDosage, "formula %q: dosage for %q outside composition", f.Name, name)
		}
	}
	return nil
}

// ContainsHerb reports whether the composition includes the canonical name.
func (f *StandardFormula) ContainsHerb(name string) bool {
	for _, h := range f.Composition {
		if h == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.  The catalog uses it for copy-on-write
// snapshot publishing.
func (f *StandardFormula) Clone() *StandardFormula {
	if f == nil {
		return nil
	}
	clone := *f
	if f.Composition != nil {
		clone.Composition = append([]string(nil), f.Composition...)
	}
	if f.StandardDosage != nil {
		clone.StandardDosage = make(map[string]float64, len(f.StandardDosage))
		for k, v := range f.StandardDosage {
			clone.StandardDosage[k] = v
		}
	}
	return &clone
}

func (f *StandardFormula) compositionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(f.Composition))
	for _, name := range f.Composition {
		set[name] = struct{}{}
	}
	return set
}
