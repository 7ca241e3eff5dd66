package monitor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/carecam/internal/constants"
	"github.com/kozaktomas/carecam/internal/database"
)

// ErrPersistence wraps every failure to stage or store a snapshot.
var ErrPersistence = errors.New("snapshot persistence failed")

// Recorder writes snapshots: a staging JPEG on disk and a durable record in the store.
type Recorder struct {
	dir          string
	writer       database.SnapshotWriter
	quality      int
	writeTimeout time.Duration
	log          logrus.FieldLogger

	saved atomic.Int64
}

type RecorderOption func(*Recorder)

// WithJPEGQuality sets the snapshot encoding quality. Default 90.
func WithJPEGQuality(q int) RecorderOption {
	return func(r *Recorder) { r.quality = q }
}

// WithWriteTimeout bounds the durable write. Default 10s.
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) { r.writeTimeout = d }
}

func WithRecorderLogger(log logrus.FieldLogger) RecorderOption {
	return func(r *Recorder) { r.log = log }
}

// NewRecorder creates the staging directory if it does not exist.
// writer may be nil, in which case only the staging copy is written.
func NewRecorder(dir string, writer database.SnapshotWriter, opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{
		dir:          dir,
		writer:       writer,
		quality:      90,
		writeTimeout: 10 * time.Second,
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	return r, nil
}

// Saved returns how many snapshots reached the durable store.
func (r *Recorder) Saved() int { return int(r.saved.Load()) }

// SnapshotFilename returns the staging filename for emotion captured at t.
func SnapshotFilename(emotion string, t time.Time) string {
	return constants.SnapshotFilePrefix + fileSafe(emotion) + "_" +
		t.Format(constants.SnapshotTimeLayout) + constants.SnapshotFileExt
}

func fileSafe(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, label)
}

// Record encodes img and persists it as a snapshot of emotion captured at now.
// Failures are logged and returned wrapped in ErrPersistence; a staging failure
// does not stop the durable write. The returned snapshot is nil unless the
// durable write succeeded.
func (r *Recorder) Record(ctx context.Context, img image.Image, emotion string, now time.Time) (*database.EmotionSnapshot, error) {
	log := r.log.WithField("emotion", emotion)

	data, err := EncodeJPEG(img, r.quality)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
		log.WithError(err).Error("snapshot not recorded")
		return nil, err
	}

	filename := SnapshotFilename(emotion, now)
	var errs []error

	if r.dir != "" {
		// Same label within the same second overwrites the staging file; the durable record keeps its own id.
		if err := os.WriteFile(filepath.Join(r.dir, filename), data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("stage %s: %w", filename, err))
		}
	}

	var snapshot *database.EmotionSnapshot
	if r.writer != nil {
		s := database.NewSnapshot(emotion, filename, data, now)
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writeTimeout)
		err := r.writer.CreateSnapshot(writeCtx, s)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("store snapshot: %w", err))
		} else {
			snapshot = s
			r.saved.Add(1)
		}
	}

	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrPersistence, errors.Join(errs...))
		log.WithError(err).WithField("filename", filename).Error("snapshot persistence failed")
		return snapshot, err
	}

	log.WithFields(logrus.Fields{
		"filename": filename,
		"bytes":    len(data),
	}).Info("emotion switch snapshot recorded")
	return snapshot, nil
}
