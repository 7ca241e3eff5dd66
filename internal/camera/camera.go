// Package camera owns the capture device and yields raw frames on demand.
package camera

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrCameraUnavailable is returned when no usable device handle exists.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrCaptureDisabled is the ErrCameraUnavailable case caused by configuration.
	ErrCaptureDisabled = fmt.Errorf("%w: capture disabled", ErrCameraUnavailable)
	// ErrFrameRead is returned when a single hardware read fails.
	ErrFrameRead = errors.New("frame read failed")
)

// Frame is one captured image.
type Frame struct {
	Image      image.Image
	CapturedAt time.Time
}

// Device abstracts the capture hardware. Implementations need not be safe for
// concurrent use; Source serialises access.
type Device interface {
	Open() error
	// Read blocks for at most timeout waiting for the next frame.
	Read(timeout time.Duration) (image.Image, error)
	Close() error
}

// Source opens its device lazily and holds at most one open handle.
type Source struct {
	enabled bool
	device  Device
	timeout time.Duration
	now     func() time.Time
	log     logrus.FieldLogger

	mu     sync.Mutex
	opened bool
}

type Option func(*Source)

// WithReadTimeout bounds a single hardware wait.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Source) { s.timeout = d }
}

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Source) { s.log = log }
}

// NewSource creates a source for device. Nothing is opened until Start or ReadFrame.
func NewSource(enabled bool, device Device, opts ...Option) *Source {
	s := &Source{
		enabled: enabled,
		device:  device,
		timeout: 5 * time.Second,
		now:     time.Now,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Enabled() bool { return s.enabled }

// Active reports whether a device handle is currently open.
func (s *Source) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Start opens the device if capture is enabled and no handle is held yet.
// It reports whether a usable handle is open afterwards.
func (s *Source) Start() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start()
}

func (s *Source) start() (bool, error) {
	if !s.enabled {
		return false, nil
	}
	if s.opened {
		return true, nil
	}
	if s.device == nil {
		return false, fmt.Errorf("%w: no device configured", ErrCameraUnavailable)
	}
	if err := s.device.Open(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}
	s.opened = true
	s.log.Info("camera opened")
	return true, nil
}

// ReadFrame returns the next frame, opening the device first if needed.
func (s *Source) ReadFrame() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil, ErrCaptureDisabled
	}
	if _, err := s.start(); err != nil {
		return nil, err
	}

	img, err := s.device.Read(s.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameRead, err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", ErrFrameRead)
	}
	return &Frame{Image: img, CapturedAt: s.now()}, nil
}

// Stop releases the device handle. Calling it without an open handle is a no-op.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return nil
	}
	s.opened = false
	if err := s.device.Close(); err != nil {
		return fmt.Errorf("close camera: %w", err)
	}
	s.log.Info("camera released")
	return nil
}
