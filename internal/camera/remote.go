package camera

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"sync"
)

// maxFrameBytes bounds a single decoded frame to keep a misbehaving
// source from growing the buffer without limit.
const maxFrameBytes = 16 << 20

// PullSource fetches one snapshot per HTTP GET. There is no transport
// buffer to drain, so skip is ignored.
type PullSource struct {
	uri        string
	httpClient *http.Client
}

func NewPullSource(uri string) *PullSource {
	return &PullSource{
		uri:        uri,
		httpClient: &http.Client{},
	}
}

func (s *PullSource) Probe(ctx context.Context) error {
	frame, err := s.Fetch(ctx, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	if len(frame) == 0 {
		return fmt.Errorf("%w: empty snapshot", ErrProbeFailed)
	}
	return nil
}

func (s *PullSource) Fetch(ctx context.Context, _ int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create snapshot request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}

	frame, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return frame, nil
}

func (s *PullSource) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// StreamSource keeps a persistent connection to an MJPEG source
// (multipart/x-mixed-replace) and reads parts on demand. The transport
// buffers frames between fetches, so Fetch drains skip parts and decodes
// only the newest one.
type StreamSource struct {
	uri        string
	httpClient *http.Client

	mu     sync.Mutex
	body   io.Closer
	reader *multipart.Reader
	closed bool
}

func NewStreamSource(uri string) *StreamSource {
	return &StreamSource{
		uri:        uri,
		httpClient: &http.Client{},
	}
}

func (s *StreamSource) Probe(ctx context.Context) error {
	if _, err := s.Fetch(ctx, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	return nil
}

func (s *StreamSource) Fetch(ctx context.Context, skip int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("stream source closed")
	}

	if s.reader == nil {
		if err := s.connectLocked(ctx); err != nil {
			return nil, err
		}
	}

	type result struct {
		frame []byte
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		frame, err := s.readLatest(skip)
		ch <- result{frame: frame, err: err}
	}()

	select {
	case <-ctx.Done():
		// Unblock the pending read and drop the connection. The next
		// Fetch reconnects.
		s.dropLocked()
		<-ch
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			s.dropLocked()
			return nil, res.err
		}
		return res.frame, nil
	}
}

func (s *StreamSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.dropLocked()
	s.httpClient.CloseIdleConnections()
	return nil
}

// connectLocked opens the MJPEG stream and prepares the part reader
func (s *StreamSource) connectLocked(ctx context.Context) error {
	// The connection outlives this call on purpose; the per-fetch
	// deadline is enforced by Fetch, not by the request context.
	req, err := http.NewRequest(http.MethodGet, s.uri, nil)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}

	resp, err := s.httpClient.Do(req.WithContext(context.WithoutCancel(ctx)))
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || params["boundary"] == "" {
		_ = resp.Body.Close()
		return fmt.Errorf("stream content type %q is not multipart", resp.Header.Get("Content-Type"))
	}
	if mediaType != "multipart/x-mixed-replace" {
		_ = resp.Body.Close()
		return fmt.Errorf("unexpected stream media type %q", mediaType)
	}

	s.body = resp.Body
	s.reader = multipart.NewReader(resp.Body, params["boundary"])
	return nil
}

// readLatest discards skip buffered parts and returns the one after them
func (s *StreamSource) readLatest(skip int) ([]byte, error) {
	for i := 0; i < skip; i++ {
		part, err := s.reader.NextPart()
		if err != nil {
			return nil, fmt.Errorf("drain stream part: %w", err)
		}
		if _, err := io.Copy(io.Discard, part); err != nil {
			return nil, fmt.Errorf("drain stream part: %w", err)
		}
	}

	part, err := s.reader.NextPart()
	if err != nil {
		return nil, fmt.Errorf("read stream part: %w", err)
	}

	frame, err := io.ReadAll(io.LimitReader(part, maxFrameBytes))
	if err != nil {
		return nil, fmt.Errorf("read stream frame: %w", err)
	}

	return frame, nil
}

func (s *StreamSource) dropLocked() {
	if s.body != nil {
		_ = s.body.Close()
	}
	s.body = nil
	s.reader = nil
}
