package provider

import (
	"context"
	"errors"
)

// Sentinel errors shared by all embedding providers.
var (
	ErrServiceUnavailable = errors.New("embedding service unavailable")
	ErrDecodeFailed       = errors.New("embedding service could not decode image")
)

// EmbeddingProvider define a interface para serviços de extração de embeddings
type EmbeddingProvider interface {
	// Detect finds faces in the encoded image and returns one entry per
	// face with its bounding box and embedding vector. An image with no
	// faces returns an empty slice and a nil error.
	Detect(ctx context.Context, image []byte) ([]DetectedFace, error)
}

// DetectedFace is one face found in a frame.
type DetectedFace struct {
	Box       BoundingBox `json:"bounding_box"`
	Embedding []float64   `json:"embedding"`
}

// BoundingBox is the face area in the image, pixel coordinates (x, y, w, h).
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}
