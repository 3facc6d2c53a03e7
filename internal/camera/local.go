package camera

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// LocalSource reads frames from a local capture device node. It expects
// the device to emit an MJPEG byte stream and extracts complete JPEG
// frames by scanning for the SOI/EOI markers. Devices configured for raw
// pixel formats are not supported.
type LocalSource struct {
	path string

	mu     sync.Mutex
	file   *os.File
	reader *bufio.Reader
}

func NewLocalSource(deviceIndex int) *LocalSource {
	return &LocalSource{
		path: fmt.Sprintf("/dev/video%d", deviceIndex),
	}
}

func (s *LocalSource) Probe(ctx context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	if info.Mode()&os.ModeDevice == 0 {
		return fmt.Errorf("%w: %s is not a device", ErrProbeFailed, s.path)
	}

	if _, err := s.Fetch(ctx, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	return nil
}

func (s *LocalSource) Fetch(ctx context.Context, skip int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		file, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("open capture device: %w", err)
		}
		s.file = file
		s.reader = bufio.NewReaderSize(file, 1<<20)
	}

	type result struct {
		frame []byte
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		frame, err := s.readFrame(skip)
		ch <- result{frame: frame, err: err}
	}()

	select {
	case <-ctx.Done():
		// Closing the device unblocks the pending read; the next call
		// reopens.
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

func (s *LocalSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked()
	return nil
}

func (s *LocalSource) dropLocked() {
	if s.file != nil {
		_ = s.file.Close()
	}
	s.file = nil
	s.reader = nil
}

// readFrame extracts skip+1 JPEG frames from the stream and returns the last
func (s *LocalSource) readFrame(skip int) ([]byte, error) {
	var frame []byte
	for i := 0; i <= skip; i++ {
		var err error
		frame, err = nextJPEG(s.reader)
		if err != nil {
			return nil, err
		}
	}
	return frame, nil
}

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// nextJPEG scans the stream for the next complete JPEG frame
func nextJPEG(r *bufio.Reader) ([]byte, error) {
	// seek start-of-image
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("scan capture stream: %w", err)
		}
		if b != jpegSOI[0] {
			continue
		}
		next, err := r.Peek(1)
		if err != nil {
			return nil, fmt.Errorf("scan capture stream: %w", err)
		}
		if next[0] == jpegSOI[1] {
			break
		}
	}

	frame := bytes.NewBuffer(nil)
	frame.Write(jpegSOI)
	_, _ = r.Discard(1)

	// accumulate until end-of-image
	prev := byte(0)
	for frame.Len() < maxFrameBytes {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read capture frame: %w", err)
		}
		frame.WriteByte(b)
		if prev == jpegEOI[0] && b == jpegEOI[1] {
			return frame.Bytes(), nil
		}
		prev = b
	}

	return nil, fmt.Errorf("capture frame exceeds %d bytes", maxFrameBytes)
}

// DiscoverLocalDevices enumerates local capture device indices. Best
// effort: any failure yields an empty list, never an error.
func DiscoverLocalDevices() []int {
	matches, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil
	}

	var indices []int
	for _, path := range matches {
		suffix := strings.TrimPrefix(filepath.Base(path), "video")
		index, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		indices = append(indices, index)
	}

	sort.Ints(indices)
	return indices
}
