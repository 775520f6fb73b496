package vector

import (
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

func checkDim(op string, a, b []float32) error {
	if len(a) != len(b) {
		return fmt.Errorf("vector: %s over %d and %d dims", op, len(a), len(b))
	}
	return nil
}

// CosineSimilarity is the normalized inner product of a and b. Mismatched
// lengths, empty input and zero vectors are errors.
func CosineSimilarity(a, b []float32) (float64, error) {
	if err := checkDim("cosine", a, b); err != nil {
		return 0, err
	}
	norms := math.Sqrt(Dot(a, a)) * math.Sqrt(Dot(b, b))
	if norms == 0 {
		return 0, fmt.Errorf("vector: cosine of empty or zero-magnitude vector")
	}
	return Dot(a, b) / norms, nil
}

// L2Distance is the Euclidean distance between a and b.
func L2Distance(a, b []float32) (float64, error) {
	if err := checkDim("l2", a, b); err != nil {
		return 0, err
	}
	var sq float64
	for i, x := range a {
		d := float64(x - b[i])
		sq += d * d
	}
	return math.Sqrt(sq), nil
}

// Dot returns the inner product of a and b. Callers guarantee equal length.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Magnitude returns the L2 norm of v.
func Magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}

// Normalize returns a unit-length copy of v. A zero vector is returned
// unchanged.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	m := Magnitude(v)
	if m == 0 || math.IsNaN(float64(m)) {
		copy(out, v)
		return out
	}
	for i := range v {
		out[i] = v[i] / m
	}
	return out
}

// Mean returns the elementwise average of vectors, which must share a dimension.
func Mean(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("vector: mean of empty set")
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector: mean dimension mismatch at %d: %d vs %d", i, len(v), dim)
		}
		for j := range v {
			sum[j] += float64(v[j])
		}
	}
	out := make([]float32, dim)
	n := float64(len(vectors))
	for j := range sum {
		out[j] = float32(sum[j] / n)
	}
	return out, nil
}
