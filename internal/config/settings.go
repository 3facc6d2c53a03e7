package config

import (
	"errors"
	"sync"
	"time"
)

// ErrThresholdOutOfRange is returned when a similarity threshold falls
// outside the [0, 1] interval.
var ErrThresholdOutOfRange = errors.New("similarity threshold must be between 0 and 1")

// MinTickInterval is the floor applied to camera polling intervals to bound
// load on camera sources regardless of what the caller asks for.
const MinTickInterval = 100 * time.Millisecond

// Runtime holds the values that can be changed while the service is running.
// Readers take a consistent snapshot per tick or per call; updates never
// reclassify frames that were already processed.
type Runtime struct {
	SimilarityThreshold float64       `json:"similarity_threshold"`
	DedupWindow         time.Duration `json:"dedup_window"`
	DisplayInterval     time.Duration `json:"display_interval"`
	FrameSkip           int           `json:"frame_skip"`
	MaxFrameWidth       int           `json:"max_frame_width"`
	JPEGQuality         int           `json:"jpeg_quality"`

	// UnknownPrefilter suppresses near-duplicate unknown sightings when
	// enabled. Off by default: every unmatched detection is persisted.
	UnknownPrefilter       bool    `json:"unknown_prefilter"`
	UnknownRecentThreshold float64 `json:"unknown_recent_threshold"`
	UnknownGlobalThreshold float64 `json:"unknown_global_threshold"`
}

// Settings is a shared, concurrency-safe holder for Runtime values.
type Settings struct {
	mu  sync.RWMutex
	cur Runtime
}

func NewSettings(cfg *Config) *Settings {
	return &Settings{
		cur: Runtime{
			SimilarityThreshold:     cfg.SimilarityThreshold,
			DedupWindow:             cfg.DedupWindow,
			DisplayInterval:         clampInterval(cfg.DisplayInterval),
			FrameSkip:               cfg.FrameSkip,
			MaxFrameWidth:           cfg.MaxFrameWidth,
			JPEGQuality:             cfg.JPEGQuality,
			UnknownRecentThreshold:  0.5,
			UnknownGlobalThreshold:  0.9,
		},
	}
}

// Snapshot returns a copy of the current runtime values.
func (s *Settings) Snapshot() Runtime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update replaces the current values. It only affects subsequent ticks and
// match calls; in-flight work keeps the snapshot it started with.
func (s *Settings) Update(r Runtime) error {
	if r.SimilarityThreshold < 0 || r.SimilarityThreshold > 1 {
		return ErrThresholdOutOfRange
	}

	r.DisplayInterval = clampInterval(r.DisplayInterval)
	if r.FrameSkip < 0 {
		r.FrameSkip = 0
	}
	s.mu.Lock()
	s.cur = r
	s.mu.Unlock()
	return nil
}

// SetSimilarityThreshold changes only the matching threshold.
func (s *Settings) SetSimilarityThreshold(t float64) error {
	if t < 0 || t > 1 {
		return ErrThresholdOutOfRange
	}

	s.mu.Lock()
	s.cur.SimilarityThreshold = t
	s.mu.Unlock()
	return nil
}

func clampInterval(d time.Duration) time.Duration {
	if d < MinTickInterval {
		return MinTickInterval
	}
	return d
}
