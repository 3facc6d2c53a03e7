package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// fakeSource counts requests so tests can verify that a disconnected
// session never touches the network again.
type fakeSource struct {
	mu       sync.Mutex
	frame    []byte
	fetchErr error
	probeErr error
	delay    time.Duration
	fetches  int
	closed   bool
}

func (f *fakeSource) Probe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probeErr
}

func (f *fakeSource) Fetch(ctx context.Context, _ int) ([]byte, error) {
	f.mu.Lock()
	f.fetches++
	frame, fetchErr, delay := f.frame, f.fetchErr, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if fetchErr != nil {
		return nil, fetchErr
	}
	return frame, nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type fakeDisplay struct {
	mu       sync.Mutex
	frames   int
	statuses []State
}

func (d *fakeDisplay) PublishFrame(cameraID string, frame []byte, matches []domain.FaceMatch) {
	d.mu.Lock()
	d.frames++
	d.mu.Unlock()
}

func (d *fakeDisplay) PublishStatus(cameraID string, state State, consecutiveErrors int) {
	d.mu.Lock()
	d.statuses = append(d.statuses, state)
	d.mu.Unlock()
}

func (d *fakeDisplay) frameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *fakeDisplay) sawState(s State) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, got := range d.statuses {
		if got == s {
			return true
		}
	}
	return false
}

type fakeProcessor struct {
	mu    sync.Mutex
	calls int
}

func (p *fakeProcessor) Process(ctx context.Context, cameraID string, frame []byte) []domain.FaceMatch {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return []domain.FaceMatch{{Known: false}}
}

func (p *fakeProcessor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 24)), nil))
	return buf.Bytes()
}

func newTestBroker(display Display, processor FrameProcessor) *Broker {
	settings := config.NewSettings(&config.Config{
		SimilarityThreshold: 0.6,
		DedupWindow:         30 * time.Minute,
		DisplayInterval:     config.MinTickInterval,
		FrameSkip:           5,
		MaxFrameWidth:       1920,
		JPEGQuality:         90,
	})
	return NewBroker(settings, processor, display, time.Second, slog.Default())
}

func addFakeCamera(t *testing.T, b *Broker, id string, source Source) {
	t.Helper()
	desc := Descriptor{CameraID: id, SourceURI: "http://cam.local/stream", Kind: KindStream}
	require.NoError(t, b.addSession(context.Background(), desc, source))
	t.Cleanup(b.Shutdown)
}

func waitFor(t *testing.T, cond func() bool, timeout time.Duration, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestBroker_AddCamera_ProbeFailure(t *testing.T) {
	b := newTestBroker(&fakeDisplay{}, nil)
	source := &fakeSource{probeErr: errors.New("no route to host")}

	desc := Descriptor{CameraID: "cam-1", Kind: KindStream}
	err := b.addSession(context.Background(), desc, source)

	assert.ErrorIs(t, err, domain.ErrCameraUnreachable)
	assert.Empty(t, b.Cameras())
	assert.True(t, source.closed)
}

func TestBroker_AddCamera_Duplicate(t *testing.T) {
	b := newTestBroker(&fakeDisplay{}, nil)
	addFakeCamera(t, b, "cam-1", &fakeSource{frame: testJPEG(t)})

	err := b.addSession(context.Background(), Descriptor{CameraID: "cam-1", Kind: KindStream}, &fakeSource{})
	assert.ErrorIs(t, err, domain.ErrCameraExists)
}

func TestBroker_LatestFrame(t *testing.T) {
	display := &fakeDisplay{}
	b := newTestBroker(display, nil)
	source := &fakeSource{frame: testJPEG(t)}
	addFakeCamera(t, b, "cam-1", source)

	waitFor(t, func() bool { return display.frameCount() > 0 }, 2*time.Second, "no frame published")

	frame, err := b.LatestFrame("cam-1")
	require.NoError(t, err)
	assert.NotEmpty(t, frame)

	// frames chegam re-codificados como JPEG
	img, _, err := image.Decode(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
}

func TestBroker_LatestFrame_UnknownCamera(t *testing.T) {
	b := newTestBroker(&fakeDisplay{}, nil)
	_, err := b.LatestFrame("ghost")
	assert.ErrorIs(t, err, domain.ErrCameraNotFound)
}

func TestBroker_HardThresholdDisconnects(t *testing.T) {
	display := &fakeDisplay{}
	b := newTestBroker(display, nil)
	source := &fakeSource{fetchErr: errors.New("connection reset")}
	addFakeCamera(t, b, "cam-1", source)

	waitFor(t, func() bool {
		status, err := b.CameraStatus("cam-1")
		return err == nil && status.State == StateDisconnected
	}, 5*time.Second, "session never disconnected")

	assert.True(t, display.sawState(StateDegraded))
	assert.True(t, display.sawState(StateDisconnected))

	// desconectada: falha imediata sem nova requisição de rede
	fetchesAtDisconnect := source.fetchCount()
	for i := 0; i < 5; i++ {
		_, err := b.LatestFrame("cam-1")
		assert.ErrorIs(t, err, domain.ErrCameraDisconnected)
	}
	time.Sleep(3 * config.MinTickInterval)
	assert.Equal(t, fetchesAtDisconnect, source.fetchCount())
}

func TestBroker_SuccessResetsErrorCounter(t *testing.T) {
	display := &fakeDisplay{}
	b := newTestBroker(display, nil)
	source := &fakeSource{fetchErr: errors.New("flaky")}
	addFakeCamera(t, b, "cam-1", source)

	// deixa acumular falhas até degradar
	waitFor(t, func() bool {
		status, err := b.CameraStatus("cam-1")
		return err == nil && status.State == StateDegraded
	}, 3*time.Second, "session never degraded")

	// fonte volta a responder
	source.mu.Lock()
	source.fetchErr = nil
	source.frame = testJPEG(t)
	source.mu.Unlock()

	waitFor(t, func() bool {
		status, err := b.CameraStatus("cam-1")
		return err == nil && status.State == StateActive && status.ConsecutiveErrors == 0
	}, 3*time.Second, "session never recovered")
}

func TestBroker_SkipWhileBusy(t *testing.T) {
	display := &fakeDisplay{}
	b := newTestBroker(display, nil)

	// cada fetch demora mais que um tick, menos que o timeout de 2 ticks
	source := &fakeSource{frame: testJPEG(t), delay: config.MinTickInterval + config.MinTickInterval/2}
	addFakeCamera(t, b, "cam-1", source)

	time.Sleep(5 * config.MinTickInterval)
	b.Shutdown()

	// com skip-if-busy, no máximo um fetch por fetch concluído: bem menos
	// que um por tick
	assert.LessOrEqual(t, source.fetchCount(), 3)
	assert.GreaterOrEqual(t, source.fetchCount(), 1)
}

func TestBroker_SetMode_RunsRecognition(t *testing.T) {
	display := &fakeDisplay{}
	processor := &fakeProcessor{}
	b := newTestBroker(display, processor)
	addFakeCamera(t, b, "cam-1", &fakeSource{frame: testJPEG(t)})

	require.NoError(t, b.SetMode("cam-1", ModeRecognition))

	waitFor(t, func() bool { return processor.callCount() > 0 }, 2*time.Second, "recognition never invoked")

	status, err := b.CameraStatus("cam-1")
	require.NoError(t, err)
	assert.Equal(t, ModeRecognition, status.Mode)
}

func TestBroker_SetMode_DisplayOnlySkipsRecognition(t *testing.T) {
	display := &fakeDisplay{}
	processor := &fakeProcessor{}
	b := newTestBroker(display, processor)
	addFakeCamera(t, b, "cam-1", &fakeSource{frame: testJPEG(t)})

	waitFor(t, func() bool { return display.frameCount() > 2 }, 2*time.Second, "no frames published")
	assert.Equal(t, 0, processor.callCount())
}

func TestBroker_SetMode_StoppedHaltsFetching(t *testing.T) {
	display := &fakeDisplay{}
	b := newTestBroker(display, nil)
	source := &fakeSource{frame: testJPEG(t)}
	addFakeCamera(t, b, "cam-1", source)

	waitFor(t, func() bool { return source.fetchCount() > 0 }, 2*time.Second, "no fetches before stop")

	require.NoError(t, b.SetMode("cam-1", ModeStopped))
	frozen := source.fetchCount()
	time.Sleep(5 * config.MinTickInterval)
	assert.LessOrEqual(t, source.fetchCount(), frozen+1)

	// o último frame continua disponível para consulta
	_, err := b.LatestFrame("cam-1")
	assert.NoError(t, err)

	// voltar para display retoma o loop
	require.NoError(t, b.SetMode("cam-1", ModeDisplay))
	waitFor(t, func() bool { return source.fetchCount() > frozen+1 }, 2*time.Second, "loop did not resume")
}

func TestBroker_SetMode_UnknownCamera(t *testing.T) {
	b := newTestBroker(&fakeDisplay{}, nil)
	assert.ErrorIs(t, b.SetMode("ghost", ModeRecognition), domain.ErrCameraNotFound)
}

func TestBroker_RemoveCamera_Idempotent(t *testing.T) {
	b := newTestBroker(&fakeDisplay{}, nil)
	source := &fakeSource{frame: testJPEG(t)}
	addFakeCamera(t, b, "cam-1", source)

	b.RemoveCamera("cam-1")
	assert.True(t, source.closed)
	assert.Empty(t, b.Cameras())

	// segunda remoção é um no-op
	b.RemoveCamera("cam-1")
}

func TestBroker_Cameras(t *testing.T) {
	b := newTestBroker(&fakeDisplay{}, nil)
	addFakeCamera(t, b, "cam-1", &fakeSource{frame: testJPEG(t)})
	addFakeCamera(t, b, "cam-2", &fakeSource{frame: testJPEG(t)})

	statuses := b.Cameras()
	assert.Len(t, statuses, 2)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "degraded", StateDegraded.String())
	assert.Equal(t, "disconnected", StateDisconnected.String())
}
