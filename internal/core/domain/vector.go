package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroVector is returned when a similarity involves a zero-magnitude vector.
var ErrZeroVector = errors.New("zero-magnitude vector")

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different or zero length, and zero-magnitude vectors, are errors.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("cosine similarity on empty vectors")
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, ErrZeroVector
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}
