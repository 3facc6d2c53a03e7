package insight

// DetectRequest for POST /detect
type DetectRequest struct {
	Img     string `json:"img"`      // base64 encoded image
	Model   string `json:"model"`    // "buffalo_l", "buffalo_sc", etc
	MinSize int    `json:"min_size"` // minimum face side in pixels
}

// DetectResponse from POST /detect
type DetectResponse struct {
	Faces []DetectedFace `json:"faces"`
}

type DetectedFace struct {
	Box       FacialArea `json:"bbox"`
	Embedding []float64  `json:"embedding"`
	DetScore  float64    `json:"det_score"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}
