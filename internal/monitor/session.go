package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/carecam/internal/ai"
	"github.com/kozaktomas/carecam/internal/camera"
	"github.com/kozaktomas/carecam/internal/constants"
	"github.com/kozaktomas/carecam/internal/emotion"
)

// Result is the outcome of one NextFrame call. Either JPEG and Label are set,
// or JPEG is nil and Diagnostic explains why.
type Result struct {
	JPEG       []byte
	Label      emotion.Label
	Diagnostic string
	// Snapshot is true when the frame completed a rapid switch.
	Snapshot bool
	Err      error
}

// Status describes a session for display.
type Status struct {
	CaptureEnabled  bool          `json:"capture_enabled"`
	AIEnabled       bool          `json:"ai_enabled"`
	Active          bool          `json:"active"`
	ModelLoaded     bool          `json:"model_loaded"`
	Model           string        `json:"model,omitempty"`
	PreviousEmotion string        `json:"previous_emotion,omitempty"`
	LastSwitch      *time.Time    `json:"last_switch,omitempty"`
	SwitchThreshold time.Duration `json:"switch_threshold_ns"`
	Frames          int           `json:"frames"`
	Snapshots       int           `json:"snapshots"`
	// Usage is set for backends billed per token.
	Usage *ai.Usage `json:"usage,omitempty"`
}

// Session is one camera with its detector state. All frame processing happens
// under a single lock so frames are classified in capture order.
type Session struct {
	source     *camera.Source
	classifier *emotion.Classifier
	detector   *SwitchDetector
	recorder   *Recorder
	quality    int
	log        logrus.FieldLogger

	mu     sync.Mutex
	frames atomic.Int64

	attachMu sync.Mutex
	attached map[uint64]context.CancelFunc
	nextID   uint64
}

type SessionOption func(*Session)

func WithSessionLogger(log logrus.FieldLogger) SessionOption {
	return func(s *Session) { s.log = log }
}

// WithFrameQuality sets the JPEG quality of returned frames.
func WithFrameQuality(q int) SessionOption {
	return func(s *Session) { s.quality = q }
}

func NewSession(source *camera.Source, classifier *emotion.Classifier, detector *SwitchDetector, recorder *Recorder, opts ...SessionOption) *Session {
	s := &Session{
		source:     source,
		classifier: classifier,
		detector:   detector,
		recorder:   recorder,
		quality:    constants.FrameJPEGQuality,
		log:        logrus.StandardLogger(),
		attached:   make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach returns a context derived from ctx that the next Stop cancels.
// Long-lived consumers such as streams pass it to NextFrame so that Stop ends
// them instead of their next frame reopening the camera. Call the returned
// function when done.
func (s *Session) Attach(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	s.attachMu.Lock()
	id := s.nextID
	s.nextID++
	s.attached[id] = cancel
	s.attachMu.Unlock()

	return ctx, func() {
		s.attachMu.Lock()
		delete(s.attached, id)
		s.attachMu.Unlock()
		cancel()
	}
}

// NextFrame reads, classifies and annotates one frame. Camera problems come
// back as a diagnostic; persistence problems are logged and never change the result.
func (s *Session) NextFrame(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{Err: err}
	}

	frame, err := s.source.ReadFrame()
	if err != nil {
		return Result{Diagnostic: diagnostic(err), Err: err}
	}
	s.frames.Add(1)

	label := s.classifier.Classify(ctx, frame.Image)

	result := Result{Label: label}
	if label.IsClassified() && s.detector.Observe(label.Value(), frame.CapturedAt) {
		result.Snapshot = true
		if s.recorder != nil {
			// Already logged by the recorder.
			_, _ = s.recorder.Record(ctx, frame.Image, label.Value(), frame.CapturedAt)
		}
	}

	data, err := EncodeJPEG(Annotate(frame.Image, label.String()), s.quality)
	if err != nil {
		s.log.WithError(err).Error("failed to encode annotated frame")
		return Result{Label: label, Snapshot: result.Snapshot, Diagnostic: constants.DiagnosticEncodeFailed, Err: err}
	}
	result.JPEG = data
	return result
}

func diagnostic(err error) string {
	switch {
	case errors.Is(err, camera.ErrCaptureDisabled):
		return constants.DiagnosticCameraDisabled
	case errors.Is(err, camera.ErrCameraUnavailable):
		return constants.DiagnosticCameraUnavailable
	default:
		return constants.DiagnosticFrameReadFailed
	}
}

// Stop releases the camera and forgets the detector state. Attached callers
// are cancelled. The session can be used again afterwards.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Cancelled under mu: an attached caller waiting for the lock sees its
	// context done and never reaches ReadFrame.
	s.attachMu.Lock()
	for id, cancel := range s.attached {
		cancel()
		delete(s.attached, id)
	}
	s.attachMu.Unlock()

	s.detector.Reset()
	return s.source.Stop()
}

func (s *Session) Status() Status {
	state := s.detector.State()
	st := Status{
		CaptureEnabled:  s.source.Enabled(),
		AIEnabled:       s.classifier.Enabled(),
		Active:          s.source.Active(),
		ModelLoaded:     s.classifier.Loaded(),
		Model:           s.classifier.ModelName(),
		PreviousEmotion: state.Previous,
		LastSwitch:      state.LastSwitch,
		SwitchThreshold: state.Threshold,
		Frames:          int(s.frames.Load()),
	}
	if s.recorder != nil {
		st.Snapshots = s.recorder.Saved()
	}
	if usage, ok := s.classifier.Usage(); ok {
		st.Usage = &usage
	}
	return st
}
