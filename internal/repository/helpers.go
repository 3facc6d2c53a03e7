package repository

import (
	"strings"

	"github.com/pgvector/pgvector-go"
)

// isUniqueViolation checks if the error is a unique constraint violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "23505") ||
		strings.Contains(errMsg, "unique") ||
		strings.Contains(errMsg, "duplicate key")
}

// toVector converts a float64 embedding to a pgvector value, nil for empty input
func toVector(embedding []float64) *pgvector.Vector {
	if len(embedding) == 0 {
		return nil
	}

	floats := make([]float32, len(embedding))
	for i, v := range embedding {
		floats[i] = float32(v)
	}
	vec := pgvector.NewVector(floats)
	return &vec
}

// fromVector converts a pgvector value back to a float64 embedding
func fromVector(vec *pgvector.Vector) []float64 {
	if vec == nil || vec.Slice() == nil {
		return nil
	}

	embedding := make([]float64, len(vec.Slice()))
	for i, v := range vec.Slice() {
		embedding[i] = float64(v)
	}
	return embedding
}
