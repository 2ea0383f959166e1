package herb

import (
	"sort"
	"strconv"
	"strings"
)

// DecodeDosage parses a compact dosage string ("麻黄:9 桂枝=6 杏仁9") into a
// name-to-amount map.  Chunks are separated by the same delimiter class as
// Parse; each must be a leading CJK name, an optional ':' or '=' separator,
// and a trailing decimal amount.  Chunks that do not fit are skipped
// individually; the call as a whole never fails.
func DecodeDosage(s string) map[string]float64 {
	result := make(map[string]float64)
	normalized := NormalizeText(s)
	if normalized == "" {
		return result
	}
	for _, chunk := range strings.Fields(normalized) {
		name, amount, ok := matchDosageChunk(chunk)
		if !ok {
			continue
		}
		result[name] = amount
	}
	return result
}

// EncodeDosage renders a dosage map as "name:amount" pairs joined by single
// spaces.  Keys are emitted in sorted order so output is deterministic, and
// amounts use the shortest decimal representation, which makes
// DecodeDosage(EncodeDosage(m)) reproduce m exactly.
func EncodeDosage(m map[string]float64) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+strconv.FormatFloat(m[k], 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

func matchDosageChunk(chunk string) (name string, amount float64, ok bool) {
	runes := []rune(chunk)

	i := 0
	for i < len(runes) && isHan(runes[i]) {
		i++
	}
	if i == 0 {
		return "", 0, false
	}

	j := i
	if j < len(runes) && (runes[j] == ':' || runes[j] == '=') {
		j++
	}

	k := j
	for k < len(runes) && isASCIIDigit(runes[k]) {
		k++
	}
	if k > j && k < len(runes) && runes[k] == '.' {
		m := k + 1
		for m < len(runes) && isASCIIDigit(runes[m]) {
			m++
		}
		if m > k+1 {
			k = m
		}
	}
	if k == j || k != len(runes) {
		return "", 0, false
	}

	v, err := strconv.ParseFloat(string(runes[j:k]), 64)
	if err != nil {
		return "", 0, false
	}
	return string(runes[:i]), v, true
}
