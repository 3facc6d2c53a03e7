package domain

// BoundingBox is the face area in the frame, pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// FaceMatch is the classification of a single detected face.
type FaceMatch struct {
	Box       BoundingBox `json:"bbox"`
	Known     bool        `json:"known"`
	Identity  *Identity   `json:"identity,omitempty"`
	Score     float64     `json:"score"`
	Embedding []float64   `json:"-"`
}
