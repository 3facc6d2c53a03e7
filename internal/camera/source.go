// Package camera gerencia sessões de captura de frames de câmeras locais
// e remotas, com um broker que controla cadência, backpressure e estado.
package camera

import (
	"context"
	"errors"
)

// Kind is the transport protocol of a camera source
type Kind string

const (
	// KindStream is a stream-oriented source (MJPEG over HTTP)
	KindStream Kind = "stream"
	// KindPull is a pull-oriented source (one snapshot per HTTP GET)
	KindPull Kind = "pull"
	// KindLocal is a local capture device
	KindLocal Kind = "local"
)

// Descriptor identifies a camera and how to reach it
type Descriptor struct {
	CameraID    string `json:"camera_id"`
	SourceURI   string `json:"source_uri,omitempty"`
	Kind        Kind   `json:"camera_type"`
	DeviceIndex int    `json:"device_index,omitempty"`
}

// State is the lifecycle state of a camera session
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateDegraded
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateDegraded:
		return "degraded"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the state name instead of the ordinal
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ErrProbeFailed indicates the reachability probe did not succeed
var ErrProbeFailed = errors.New("camera probe failed")

// Source yields frames from one camera on demand. Fetch drains frames
// buffered by the transport and returns the most recent one.
type Source interface {
	// Probe verifies the source answers within the context deadline
	Probe(ctx context.Context) error

	// Fetch returns the latest encoded frame, draining up to skip
	// buffered frames first
	Fetch(ctx context.Context, skip int) ([]byte, error)

	// Close releases the underlying transport. Idempotent.
	Close() error
}

// NewSource builds the Source for a descriptor
func NewSource(desc Descriptor) (Source, error) {
	switch desc.Kind {
	case KindPull:
		return NewPullSource(desc.SourceURI), nil
	case KindStream:
		return NewStreamSource(desc.SourceURI), nil
	case KindLocal:
		return NewLocalSource(desc.DeviceIndex), nil
	default:
		return nil, errors.New("unknown camera type: " + string(desc.Kind))
	}
}
