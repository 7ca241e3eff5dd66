package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/carecam/internal/constants"
	"github.com/kozaktomas/carecam/internal/monitor"
)

// FrameSession is the part of monitor.Session the camera endpoints need.
type FrameSession interface {
	NextFrame(ctx context.Context) monitor.Result
	Attach(ctx context.Context) (context.Context, context.CancelFunc)
	Stop() error
	Status() monitor.Status
}

// CameraHandler serves annotated frames from a single camera session
type CameraHandler struct {
	session FrameSession
	log     logrus.FieldLogger
}

// NewCameraHandler creates a new camera handler
func NewCameraHandler(session FrameSession, log logrus.FieldLogger) *CameraHandler {
	return &CameraHandler{session: session, log: log}
}

// Frame returns one annotated JPEG. The label travels in the X-Emotion header.
func (h *CameraHandler) Frame(w http.ResponseWriter, r *http.Request) {
	res := h.session.NextFrame(r.Context())
	if res.JPEG == nil {
		h.respondDiagnostic(w, res)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Emotion", res.Label.String())
	if res.Snapshot {
		w.Header().Set("X-Snapshot", "true")
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(res.JPEG)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.JPEG)
}

func (h *CameraHandler) respondDiagnostic(w http.ResponseWriter, res monitor.Result) {
	if errors.Is(res.Err, context.Canceled) {
		return
	}
	msg := res.Diagnostic
	if msg == "" && res.Err != nil {
		msg = res.Err.Error()
	}
	respondError(w, http.StatusServiceUnavailable, msg)
}

// Stream serves frames as multipart/x-mixed-replace until a frame cannot be
// produced or the client goes away. A camera stop also ends it.
// interval_ms sets the pause between frames.
func (h *CameraHandler) Stream(w http.ResponseWriter, r *http.Request) {
	interval := time.Duration(constants.DefaultStreamIntervalMillis) * time.Millisecond
	if ms, err := strconv.Atoi(r.URL.Query().Get("interval_ms")); err == nil && ms >= 0 {
		interval = time.Duration(ms) * time.Millisecond
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx, detach := h.session.Attach(r.Context())
	defer detach()

	// The first frame decides the status code.
	res := h.session.NextFrame(ctx)
	if res.JPEG == nil {
		if stopped(r, res.Err) {
			respondError(w, http.StatusServiceUnavailable, constants.DiagnosticCameraStopped)
			return
		}
		h.respondDiagnostic(w, res)
		return
	}

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(constants.StreamBoundary); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+constants.StreamBoundary)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	frames := 0
	for {
		if err := writeFramePart(mw, res); err != nil {
			h.log.WithError(err).Debug("stream write failed")
			return
		}
		flusher.Flush()
		frames++

		select {
		case <-ctx.Done():
		case <-time.After(interval):
			res = h.session.NextFrame(ctx)
		}

		switch {
		case r.Context().Err() != nil:
			h.log.WithField("frames", frames).Debug("stream client disconnected")
			return
		case ctx.Err() != nil:
			h.log.WithField("frames", frames).Info("stream ended by camera stop")
			mw.Close()
			flusher.Flush()
			return
		case res.JPEG == nil:
			h.log.WithField("diagnostic", res.Diagnostic).Info("stream ended")
			mw.Close()
			flusher.Flush()
			return
		}
	}
}

// stopped reports whether err comes from a Stop rather than the client leaving.
func stopped(r *http.Request, err error) bool {
	return errors.Is(err, context.Canceled) && r.Context().Err() == nil
}

func writeFramePart(mw *multipart.Writer, res monitor.Result) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "image/jpeg")
	header.Set("Content-Length", strconv.Itoa(len(res.JPEG)))
	header.Set("X-Emotion", res.Label.String())
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(res.JPEG); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Status returns the session status
func (h *CameraHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Status())
}

// Stop releases the camera and resets detection state
func (h *CameraHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Stop(); err != nil {
		h.log.WithError(err).Error("failed to stop camera")
		respondError(w, http.StatusInternalServerError, "failed to stop camera")
		return
	}
	respondJSON(w, http.StatusOK, h.session.Status())
}
