package herb

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// delimiters is the class of characters treated as token separators in user
// input and dosage strings: commas (ASCII, full-width, ideographic),
// sentence punctuation, and line breaks.  NFKC folding already maps the
// full-width forms to ASCII, but the set keeps both so NormalizeText does
// not depend on the folding step.
var delimiters = map[rune]struct{}{
	',': {}, '，': {}, '、': {},
	'。': {}, '；': {}, ';': {},
	'！': {}, '!': {}, '？': {}, '?': {},
	'\n': {}, '\r': {}, '\t': {},
}

func isDelimiter(r rune) bool {
	_, ok := delimiters[r]
	return ok
}

// NormalizeText prepares raw user text for tokenization: NFKC folding
// (full-width digits and letters such as ９ｇ become ASCII), delimiter
// replacement with spaces, and trimming.
func NormalizeText(raw string) string {
	folded := norm.NFKC.String(raw)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isDelimiter(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Token is the structured result of matching one input token against the
// herb shape: a leading run of CJK ideographs, an optional decimal amount,
// an optional unit run.  The Matched/Unmatched distinction is carried by
// MatchToken's second return value rather than by sentinel fields.
type Token struct {
	Name      string
	Dosage    float64
	HasDosage bool
	Unit      string
}

func isHan(r rune) bool { return unicode.Is(unicode.Han, r) }

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

// MatchToken matches a single whitespace-free token.  ok is false when the
// token does not fit the name+dosage+unit shape; such tokens produce no
// entry and are dropped by Parse without error.  A token with digits or a
// unit but no leading CJK name never matches.
func MatchToken(tok string) (Token, bool) {
	runes := []rune(tok)

	i := 0
	for i < len(runes) && isHan(runes[i]) {
		i++
	}
	if i == 0 {
		return Token{}, false
	}

	// Optional decimal amount: digits with at most one fractional part.
	j := i
	for j < len(runes) && isASCIIDigit(runes[j]) {
		j++
	}
	numEnd := j
	if j > i && j < len(runes) && runes[j] == '.' {
		k := j + 1
		for k < len(runes) && isASCIIDigit(runes[k]) {
			k++
		}
		if k > j+1 {
			numEnd = k
		}
	}
	hasDosage := numEnd > i

	// Optional unit: a run of letters, CJK included.
	u := numEnd
	for u < len(runes) && unicode.IsLetter(runes[u]) {
		u++
	}
	if u != len(runes) {
		return Token{}, false
	}

	t := Token{
		Name:      string(runes[:i]),
		HasDosage: hasDosage,
		Unit:      string(runes[numEnd:u]),
	}
	if hasDosage {
		v, err := strconv.ParseFloat(string(runes[i:numEnd]), 64)
		if err != nil {
			return Token{}, false
		}
		t.Dosage = v
	}
	return t, true
}

// Parse converts raw free text into an ordered sequence of herb entries.
// Unmatched tokens are dropped silently, duplicates are preserved as
// separate entries, and names are canonicalized through the alias table.
// Parse never fails: empty or unusable input yields an empty slice.
func Parse(raw string) []Entry {
	normalized := NormalizeText(raw)
	if normalized == "" {
		return nil
	}

	tokens := strings.Fields(normalized)
	entries := make([]Entry, 0, len(tokens))
	for _, tok := range tokens {
		m, ok := MatchToken(tok)
		if !ok {
			continue
		}
		unit := m.Unit
		if !m.HasDosage || unit == "" {
			unit = DefaultUnit
		}
		entries = append(entries, Entry{
			Name:         ResolveHerbAlias(m.Name),
			Dosage:       m.Dosage,
			Unit:         unit,
			OriginalText: tok,
		})
	}
	return entries
}
