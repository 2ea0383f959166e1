package formula

import (
	"math"

	"github.com/herbwise/fangmatch/internal/domain/herb"
)

// RatioSimilarity measures how closely the input dosage ratios follow a
// formula's standard dosage ratios, as a cosine similarity in [0,1].  The
// comparison is restricted to herbs with a nonzero input dosage that appear
// in the standard map.  Fewer than 2 such common herbs means the ratio
// cannot be judged and the function returns 1, a neutral "no anomaly"
// signal rather than an error.
//
// The vector compared is the per-herb input/standard quotient against the
// uniform vector, so a uniformly scaled prescription (every herb doubled)
// still scores 1 while a skew on any single herb pulls the score down
// regardless of that herb's absolute amount.  A zero-magnitude vector
// yields 0; the common-set guard makes that unreachable in practice, but it
// is handled defensively.
func RatioSimilarity(input []herb.Entry, standard map[string]float64) float64 {
	if len(standard) == 0 {
		return 1
	}

	var ratios []float64
	seen := make(map[string]struct{}, len(input))
	for _, e := range input {
		if !e.HasDosage() {
			continue
		}
		ref, ok := standard[e.Name]
		if !ok || ref <= 0 {
			continue
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		ratios = append(ratios, e.Dosage/ref)
	}
	if len(ratios) < 2 {
		return 1
	}

	uniform := make([]float64, len(ratios))
	for i := range uniform {
		uniform[i] = 1
	}
	return cosineSimilarity(ratios, uniform)
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
