package vector

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine_SelfSimilarity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 10; i++ {
		v := make([]float64, 512)
		for j := range v {
			v[j] = rng.NormFloat64()
		}

		got := Cosine(v, v)
		assert.InEpsilon(t, 1.0, got, 1e-9)
	}
}

func TestCosine_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		a := make([]float64, 128)
		b := make([]float64, 128)
		for j := range a {
			a[j] = rng.NormFloat64()
			b[j] = rng.NormFloat64()
		}

		got := Cosine(a, b)
		assert.GreaterOrEqual(t, got, -1.0-1e-9)
		assert.LessOrEqual(t, got, 1.0+1e-9)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0, 0}, []float64{1, 0, 0}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"scale invariant", []float64{2, 0}, []float64{5, 0}, 1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1, 0}, []float64{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-12)
		})
	}
}

func TestNormalize(t *testing.T) {
	v := []float64{3, 4}
	got := Normalize(v)

	assert.InDelta(t, 0.6, got[0], 1e-12)
	assert.InDelta(t, 0.8, got[1], 1e-12)

	// input untouched
	assert.Equal(t, []float64{3, 4}, v)
}

func TestNormalize_UnitLength(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	v := make([]float64, 256)
	for i := range v {
		v[i] = rng.NormFloat64() * 10
	}

	got := Normalize(v)

	var norm float64
	for _, x := range got {
		norm += x * x
	}
	assert.InEpsilon(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestNormalize_ZeroVector(t *testing.T) {
	got := Normalize([]float64{0, 0, 0})
	assert.Equal(t, []float64{0, 0, 0}, got)
}
