package camera

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/imaging"
)

// Mode is the operating mode of a camera session
type Mode string

const (
	// ModeDisplay fetches frames for display only
	ModeDisplay Mode = "display"
	// ModeRecognition fetches frames and runs them through recognition
	ModeRecognition Mode = "recognition"
	// ModeStopped halts the loop but keeps the session and its last frame
	ModeStopped Mode = "stopped"
)

const (
	// softFailureThreshold marks a session Degraded
	softFailureThreshold = 3
	// hardFailureThreshold disconnects a session for good
	hardFailureThreshold = 10
)

// FrameProcessor classifies the faces in a frame. Implemented by the
// recognition pipeline; failures surface as an empty match list.
type FrameProcessor interface {
	Process(ctx context.Context, cameraID string, frame []byte) []domain.FaceMatch
}

// Display receives the output of each tick
type Display interface {
	PublishFrame(cameraID string, frame []byte, matches []domain.FaceMatch)
	PublishStatus(cameraID string, state State, consecutiveErrors int)
}

// Status is the externally visible snapshot of a session
type Status struct {
	Descriptor        Descriptor `json:"descriptor"`
	State             State      `json:"state"`
	Mode              Mode       `json:"mode"`
	ConsecutiveErrors int        `json:"consecutive_errors"`
	LastFrameAt       *time.Time `json:"last_frame_at,omitempty"`
}

// session is the live state of one camera. Owned exclusively by its
// broker loop; the frame buffer is replaced whole on every fetch.
type session struct {
	desc   Descriptor
	source Source

	mu          sync.Mutex
	state       State
	mode        Mode
	errors      int
	lastFrame   []byte
	lastFrameAt time.Time
	inFlight    bool

	cancel context.CancelFunc
	done   chan struct{}
}

// Broker drives one timed acquisition loop per registered camera.
type Broker struct {
	settings  *config.Settings
	processor FrameProcessor
	display   Display
	logger    *slog.Logger

	probeTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

func NewBroker(settings *config.Settings, processor FrameProcessor, display Display, probeTimeout time.Duration, logger *slog.Logger) *Broker {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}

	return &Broker{
		settings:     settings,
		processor:    processor,
		display:      display,
		logger:       logger,
		probeTimeout: probeTimeout,
		sessions:     make(map[string]*session),
	}
}

// AddCamera probes the source and starts its acquisition loop in display
// mode. Fails with ErrCameraExists for a duplicated id and with
// ErrCameraUnreachable when the probe does not answer in time.
func (b *Broker) AddCamera(ctx context.Context, desc Descriptor) error {
	b.mu.Lock()
	if _, exists := b.sessions[desc.CameraID]; exists {
		b.mu.Unlock()
		return domain.ErrCameraExists
	}
	b.mu.Unlock()

	source, err := NewSource(desc)
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	return b.addSession(ctx, desc, source)
}

func (b *Broker) addSession(ctx context.Context, desc Descriptor, source Source) error {
	probeCtx, cancel := context.WithTimeout(ctx, b.probeTimeout)
	defer cancel()

	if err := source.Probe(probeCtx); err != nil {
		_ = source.Close()
		return domain.ErrCameraUnreachable.WithError(err)
	}

	sess := &session{
		desc:   desc,
		source: source,
		state:  StateConnecting,
		mode:   ModeDisplay,
	}

	b.mu.Lock()
	if _, exists := b.sessions[desc.CameraID]; exists {
		b.mu.Unlock()
		_ = source.Close()
		return domain.ErrCameraExists
	}
	b.sessions[desc.CameraID] = sess
	b.mu.Unlock()

	b.startLoop(sess)

	b.logger.Info("camera added",
		slog.String("camera_id", desc.CameraID),
		slog.String("kind", string(desc.Kind)),
	)
	return nil
}

// RemoveCamera stops the loop and releases the source. Idempotent.
func (b *Broker) RemoveCamera(id string) {
	b.mu.Lock()
	sess, ok := b.sessions[id]
	if ok {
		delete(b.sessions, id)
	}
	b.mu.Unlock()

	if !ok {
		return
	}

	b.stopLoop(sess)
	_ = sess.source.Close()

	sess.mu.Lock()
	sess.state = StateIdle
	sess.mu.Unlock()

	b.logger.Info("camera removed", slog.String("camera_id", id))
}

// SetMode switches the session between display and recognition cadence.
// The running timer is stopped before the new one starts, so a camera
// never has two concurrent loops.
func (b *Broker) SetMode(id string, mode Mode) error {
	sess, err := b.session(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.state == StateDisconnected {
		sess.mu.Unlock()
		return domain.ErrCameraDisconnected
	}
	if sess.mode == mode {
		sess.mu.Unlock()
		return nil
	}
	sess.mode = mode
	sess.mu.Unlock()

	b.stopLoop(sess)
	if mode != ModeStopped {
		b.startLoop(sess)
	}

	b.logger.Info("camera mode changed",
		slog.String("camera_id", id),
		slog.String("mode", string(mode)),
	)
	return nil
}

// LatestFrame returns the newest frame re-encoded to the configured
// display size and quality. A Disconnected session fails immediately
// without touching the network.
func (b *Broker) LatestFrame(id string) ([]byte, error) {
	sess, err := b.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	state := sess.state
	frame := sess.lastFrame
	sess.mu.Unlock()

	if state == StateDisconnected {
		return nil, domain.ErrCameraDisconnected
	}
	if len(frame) == 0 {
		return nil, domain.ErrFrameUnavailable
	}

	runtime := b.settings.Snapshot()
	encoded, err := imaging.Reencode(frame, runtime.MaxFrameWidth, runtime.JPEGQuality)
	if err != nil {
		return nil, domain.ErrFrameUnavailable.WithError(err)
	}

	return encoded, nil
}

// Cameras lists the registered sessions
func (b *Broker) Cameras() []Status {
	b.mu.Lock()
	sessions := make([]*session, 0, len(b.sessions))
	for _, sess := range b.sessions {
		sessions = append(sessions, sess)
	}
	b.mu.Unlock()

	statuses := make([]Status, 0, len(sessions))
	for _, sess := range sessions {
		statuses = append(statuses, sess.status())
	}
	return statuses
}

// CameraStatus returns the snapshot of one session
func (b *Broker) CameraStatus(id string) (Status, error) {
	sess, err := b.session(id)
	if err != nil {
		return Status{}, err
	}
	return sess.status(), nil
}

// Shutdown stops every session loop and closes the sources
func (b *Broker) Shutdown() {
	b.mu.Lock()
	sessions := b.sessions
	b.sessions = make(map[string]*session)
	b.mu.Unlock()

	for _, sess := range sessions {
		b.stopLoop(sess)
		_ = sess.source.Close()
	}
}

func (b *Broker) session(id string) (*session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sess, ok := b.sessions[id]
	if !ok {
		return nil, domain.ErrCameraNotFound
	}
	return sess, nil
}

func (b *Broker) startLoop(sess *session) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	sess.mu.Lock()
	sess.cancel = cancel
	sess.done = done
	sess.mu.Unlock()

	go b.run(ctx, sess, done)
}

func (b *Broker) stopLoop(sess *session) {
	sess.mu.Lock()
	cancel := sess.cancel
	done := sess.done
	sess.cancel = nil
	sess.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run is the acquisition loop for one session. A fresh timer per tick
// keeps the interval hot-reloadable; ticks run off-loop so a slow fetch
// delays nothing, it just makes the next tick skip.
func (b *Broker) run(ctx context.Context, sess *session, done chan struct{}) {
	defer close(done)

	for {
		timer := time.NewTimer(b.tickInterval(sess))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		go func() {
			if disconnected := b.tick(ctx, sess); disconnected {
				b.disconnect(sess)
			}
		}()
	}
}

// disconnect stops the loop of a session that crossed the hard threshold
func (b *Broker) disconnect(sess *session) {
	sess.mu.Lock()
	cancel := sess.cancel
	sess.cancel = nil
	sess.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// tickInterval derives the cadence from the runtime settings. Recognition
// runs at half the display interval; both respect the floor.
func (b *Broker) tickInterval(sess *session) time.Duration {
	runtime := b.settings.Snapshot()

	sess.mu.Lock()
	mode := sess.mode
	sess.mu.Unlock()

	interval := runtime.DisplayInterval
	if mode == ModeRecognition {
		interval /= 2
	}
	if interval < config.MinTickInterval {
		interval = config.MinTickInterval
	}
	return interval
}

// tick performs one fetch cycle. Returns true when the session crossed
// the hard failure threshold and the loop must stop.
func (b *Broker) tick(ctx context.Context, sess *session) bool {
	sess.mu.Lock()
	if sess.inFlight {
		// previous fetch still running: skip, never queue
		sess.mu.Unlock()
		return false
	}
	sess.inFlight = true
	mode := sess.mode
	sess.mu.Unlock()

	defer func() {
		sess.mu.Lock()
		sess.inFlight = false
		sess.mu.Unlock()
	}()

	runtime := b.settings.Snapshot()

	// the whole tick, fetch plus recognition, is bounded by twice the
	// tick interval
	tickCtx, cancel := context.WithTimeout(ctx, 2*b.tickInterval(sess))
	defer cancel()

	frame, err := sess.source.Fetch(tickCtx, runtime.FrameSkip)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		return b.recordFailure(sess, err)
	}

	b.recordSuccess(sess, frame)

	var matches []domain.FaceMatch
	if mode == ModeRecognition && b.processor != nil {
		matches = b.processor.Process(tickCtx, sess.desc.CameraID, frame)
	}

	if b.display != nil {
		b.display.PublishFrame(sess.desc.CameraID, frame, matches)
	}

	return false
}

func (b *Broker) recordSuccess(sess *session, frame []byte) {
	sess.mu.Lock()
	wasDegraded := sess.state == StateDegraded
	sess.state = StateActive
	sess.errors = 0
	sess.lastFrame = frame
	sess.lastFrameAt = time.Now()
	sess.mu.Unlock()

	if wasDegraded && b.display != nil {
		b.display.PublishStatus(sess.desc.CameraID, StateActive, 0)
	}
}

func (b *Broker) recordFailure(sess *session, err error) bool {
	sess.mu.Lock()
	sess.errors++
	errors := sess.errors

	var notify bool
	switch {
	case errors >= hardFailureThreshold:
		sess.state = StateDisconnected
		notify = true
	case errors >= softFailureThreshold:
		notify = sess.state != StateDegraded
		sess.state = StateDegraded
	}
	state := sess.state
	sess.mu.Unlock()

	b.logger.Warn("camera fetch failed",
		slog.String("camera_id", sess.desc.CameraID),
		slog.Int("consecutive_errors", errors),
		slog.String("state", state.String()),
		slog.Any("error", err),
	)

	if notify && b.display != nil {
		b.display.PublishStatus(sess.desc.CameraID, state, errors)
	}

	if state == StateDisconnected {
		_ = sess.source.Close()
		return true
	}
	return false
}

func (s *session) status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Descriptor:        s.desc,
		State:             s.state,
		Mode:              s.mode,
		ConsecutiveErrors: s.errors,
	}
	if !s.lastFrameAt.IsZero() {
		at := s.lastFrameAt
		status.LastFrameAt = &at
	}
	return status
}
