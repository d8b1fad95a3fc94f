package embedding

import "math"

// normEpsilon keeps the division defined for an all-zero vector; such a
// vector maps to a near-zero result instead of NaN.
const normEpsilon = 1e-12

// Normalize scales v to unit L2 norm and returns a new slice.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
