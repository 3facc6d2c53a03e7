// Package vector holds the embedding math shared by the gallery, the
// recognition engine and the unknown-face pre-filter.
package vector

import (
	"gonum.org/v1/gonum/floats"
)

// Cosine returns the cosine similarity of two embeddings, in [-1, 1].
// Mismatched lengths or a zero-norm operand yield 0 instead of an error:
// such vectors can never clear a matching threshold anyway.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}

	return floats.Dot(a, b) / (na * nb)
}

// Normalize returns a unit-length copy of the embedding. Upstream services
// are expected to return near-unit vectors; this is the defensive pass the
// matching path applies anyway. Zero vectors are returned as a copy.
func Normalize(a []float64) []float64 {
	out := make([]float64, len(a))
	copy(out, a)

	n := floats.Norm(out, 2)
	if n == 0 {
		return out
	}

	floats.Scale(1/n, out)
	return out
}
