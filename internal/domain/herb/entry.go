// Package herb contains the input side of the matching engine: the parsed
// herb entry model, the alias tables, the free-text parser, and the
// dosage-string codec.  Everything in this package is pure: no I/O, no
// shared state, no errors.  Callers that need persistence or transport wrap
// these functions from the application layer.
package herb

// DefaultUnit is the mass unit assumed when the user writes a bare number
// ("麻黄9") or no dosage at all.
const DefaultUnit = "g"

// Entry is one ingredient as understood from user input.  Entries are
// created by Parse and never mutated afterwards; they live for the duration
// of one search request.
type Entry struct {
	// Name is the canonical herb name, post alias resolution.
	Name string `json:"name"`

	// Dosage is a non-negative amount; 0 means "unspecified".
	Dosage float64 `json:"dosage"`

	// Unit is the dosage unit, defaulting to DefaultUnit when the input
	// carried a bare number or no number.
	Unit string `json:"unit"`

	// OriginalText is the token the entry was derived from.  Display and
	// diffing only; it is never re-parsed.
	OriginalText string `json:"original_text"`
}

// HasDosage reports whether the user specified an amount for this entry.
func (e Entry) HasDosage() bool {
	return e.Dosage > 0
}

// Names returns the entry names in input order, duplicates included.
func Names(entries []Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// NameSet returns the distinct entry names as a membership set.
func NameSet(entries []Entry) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e.Name] = struct{}{}
	}
	return set
}
