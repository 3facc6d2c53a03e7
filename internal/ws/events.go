package ws

import (
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/camera"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type EventType string

const (
	EventFrame        EventType = "camera.frame"
	EventCameraStatus EventType = "camera.status"
)

type Event struct {
	CameraID  string      `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// FramePayload carrega um frame JPEG (base64 no JSON) e as faces
// reconhecidas nele.
type FramePayload struct {
	Image   []byte             `json:"image"`
	Matches []domain.FaceMatch `json:"matches,omitempty"`
}

type StatusPayload struct {
	State             camera.State `json:"state"`
	ConsecutiveErrors int          `json:"consecutive_errors"`
}

// PublishFrame implementa camera.Display.
func (h *Hub) PublishFrame(cameraID string, frame []byte, matches []domain.FaceMatch) {
	h.BroadcastToCamera(cameraID, EventFrame, FramePayload{Image: frame, Matches: matches})
}

// PublishStatus implementa camera.Display.
func (h *Hub) PublishStatus(cameraID string, state camera.State, consecutiveErrors int) {
	h.BroadcastToCamera(cameraID, EventCameraStatus, StatusPayload{
		State:             state,
		ConsecutiveErrors: consecutiveErrors,
	})
}

var _ camera.Display = (*Hub)(nil)
