package vrcapture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kevmo314/go-vrcapture/pkg/logger"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

const (
	DefaultPollInterval = time.Second
	DefaultPollDeadline = 5 * time.Second
)

// StreamSource is the subset of the tracked camera used to pull one frame.
// *openvr.TrackedCamera implements it.
type StreamSource interface {
	AcquireVideoStreamingService(dev openvr.TrackedDeviceIndex) (openvr.CameraHandle, error)
	CameraFrameSize(dev openvr.TrackedDeviceIndex, ft openvr.FrameType) (openvr.FrameSize, error)
	VideoStreamFrameBuffer(h openvr.CameraHandle, ft openvr.FrameType, buf []byte) (openvr.FrameHeader, error)
}

// Clock supplies time and timers to the polling loop.
type Clock interface {
	Now() time.Time
	NewTimer() backoff.Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) NewTimer() backoff.Timer { return &systemTimer{} }

type systemTimer struct {
	timer *time.Timer
}

func (t *systemTimer) C() <-chan time.Time { return t.timer.C }

func (t *systemTimer) Start(d time.Duration) {
	if t.timer == nil {
		t.timer = time.NewTimer(d)
	} else {
		t.timer.Reset(d)
	}
}

func (t *systemTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

type StreamState int

const (
	StreamInactive StreamState = iota
	StreamServiceAcquired
	StreamPolling
	StreamFrameReady
	StreamTimedOut
	StreamFailed
)

func (s StreamState) String() string {
	switch s {
	case StreamInactive:
		return "inactive"
	case StreamServiceAcquired:
		return "service-acquired"
	case StreamPolling:
		return "polling"
	case StreamFrameReady:
		return "frame-ready"
	case StreamTimedOut:
		return "timed-out"
	case StreamFailed:
		return "failed"
	}
	return fmt.Sprintf("StreamState(%d)", int(s))
}

type StreamOptions struct {
	Device    openvr.TrackedDeviceIndex
	FrameType openvr.FrameType
	// Interval is the wait between attempts that found no frame.
	Interval time.Duration
	// Deadline bounds the polling phase, measured from the first attempt.
	Deadline time.Duration
	Clock    Clock
}

// StreamCapture pulls a single frame from the tracked camera.
//
// The streaming service is acquired but never released: the runtime's
// release call is unreliable, so the handle is left to the runtime and is
// reclaimed when the process's session ends.
type StreamCapture struct {
	src  StreamSource
	opts StreamOptions

	mu    sync.Mutex
	state StreamState
}

func NewStreamCapture(src StreamSource, opts StreamOptions) *StreamCapture {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultPollDeadline
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	return &StreamCapture{src: src, opts: opts}
}

func (s *StreamCapture) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *StreamCapture) setState(state StreamState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// CameraFrame is a filled frame buffer and the header describing it.
type CameraFrame struct {
	Header openvr.FrameHeader
	Size   openvr.FrameSize
	Buffer []byte
}

// Image forces the alpha channel opaque and views the buffer as an RGBA
// image of the reported frame size. The buffer is modified in place.
func (f *CameraFrame) Image() (*image.RGBA, error) {
	w, h := int(f.Size.Width), int(f.Size.Height)
	n := w * h * 4
	if n == 0 || len(f.Buffer) < n {
		return nil, fmt.Errorf("frame buffer of %d bytes cannot hold a %dx%d RGBA image", len(f.Buffer), w, h)
	}
	ForceOpaque(f.Buffer)
	return &image.RGBA{Pix: f.Buffer[:n], Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
}

// deadlineBackOff waits a fixed interval between attempts and stops once
// the next attempt would start after the deadline. An attempt landing
// exactly on the deadline still runs.
type deadlineBackOff struct {
	interval time.Duration
	deadline time.Duration
	clock    Clock
	start    time.Time
}

func (b *deadlineBackOff) Reset() { b.start = b.clock.Now() }

func (b *deadlineBackOff) NextBackOff() time.Duration {
	if b.clock.Now().Add(b.interval).Sub(b.start) > b.deadline {
		return backoff.Stop
	}
	return b.interval
}

// Capture acquires the streaming service and polls until a frame arrives,
// the deadline passes or a non-transient error occurs.
func (s *StreamCapture) Capture(ctx context.Context) (*CameraFrame, error) {
	log := logger.WithComponent("stream")
	opts := s.opts

	handle, err := s.src.AcquireVideoStreamingService(opts.Device)
	if err != nil {
		s.setState(StreamFailed)
		return nil, &CameraServiceError{Op: "acquire streaming service", Err: err}
	}
	s.setState(StreamServiceAcquired)

	size, err := s.src.CameraFrameSize(opts.Device, opts.FrameType)
	if err != nil && !openvr.IsBufferTooSmall(err) {
		s.setState(StreamFailed)
		return nil, &CameraServiceError{Op: "query frame size", Err: err}
	}
	if size.FrameBufferSize == 0 {
		s.setState(StreamFailed)
		return nil, &CameraServiceError{Op: "query frame size", Err: errors.New("runtime reported an empty frame buffer")}
	}
	log.Debug().
		Stringer("frame_type", opts.FrameType).
		Uint32("width", size.Width).
		Uint32("height", size.Height).
		Uint32("buffer_size", size.FrameBufferSize).
		Msg("streaming service acquired")

	buf := make([]byte, size.FrameBufferSize)
	s.setState(StreamPolling)

	var (
		header   openvr.FrameHeader
		attempts int
		start    = opts.Clock.Now()
	)
	operation := func() error {
		attempts++
		h, err := s.src.VideoStreamFrameBuffer(handle, opts.FrameType, buf)
		switch {
		case err == nil:
			header = h
			return nil
		case openvr.IsFrameNotReady(err):
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		log.Debug().Int("attempt", attempts).Dur("wait", wait).Err(err).Msg("camera frame not ready")
	}
	b := backoff.WithContext(&deadlineBackOff{
		interval: opts.Interval,
		deadline: opts.Deadline,
		clock:    opts.Clock,
	}, ctx)

	err = backoff.RetryNotifyWithTimer(operation, b, notify, opts.Clock.NewTimer())
	elapsed := opts.Clock.Now().Sub(start)
	switch {
	case err == nil:
	case openvr.IsFrameNotReady(err):
		s.setState(StreamTimedOut)
		return nil, &CaptureTimeoutError{Attempts: attempts, Elapsed: elapsed, Last: err}
	default:
		s.setState(StreamFailed)
		return nil, &CameraServiceError{Op: "fill frame buffer", Err: err}
	}

	s.setState(StreamFrameReady)
	log.Info().
		Int("attempts", attempts).
		Dur("elapsed", elapsed).
		Uint32("sequence", header.FrameSequence).
		Msg("camera frame captured")
	return &CameraFrame{Header: header, Size: size, Buffer: buf}, nil
}
