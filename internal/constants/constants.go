// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Diagnostic strings returned in place of a frame
const (
	// DiagnosticCameraDisabled is reported when capture is switched off by configuration
	DiagnosticCameraDisabled = "Camera disabled"

	// DiagnosticCameraUnavailable is reported when the device could not be opened
	DiagnosticCameraUnavailable = "Camera unavailable"

	// DiagnosticFrameReadFailed is reported when a single hardware read fails
	DiagnosticFrameReadFailed = "Frame read failed"

	// DiagnosticCameraStopped is reported to a stream ended by a camera stop
	DiagnosticCameraStopped = "Camera stopped"
)

// Emotion label constants
const (
	// LabelDisabled is the label rendered when classification is switched off
	LabelDisabled = "disabled"

	// LabelUnknown is the label rendered when classification failed
	LabelUnknown = "Unknown"
)

// Snapshot constants
const (
	// SnapshotFilePrefix starts every staged snapshot filename
	SnapshotFilePrefix = "emotion_"

	// SnapshotTimeLayout is the timestamp layout embedded in staged snapshot filenames
	SnapshotTimeLayout = "2006-01-02_15-04-05"

	// SnapshotFileExt is the extension of staged snapshot files
	SnapshotFileExt = ".jpg"
)

// Image processing constants
const (
	// MaxModelImageSize is the maximum dimension (width or height) of images sent to a model
	MaxModelImageSize = 640

	// ModelJPEGQuality is the JPEG quality used for images sent to a model
	ModelJPEGQuality = 85

	// OverlayX and OverlayY position the emotion caption on annotated frames
	OverlayX = 20
	OverlayY = 40

	// OverlayScale enlarges the bitmap font used for the caption
	OverlayScale = 2
)

// Model retry constants
const (
	// MaxJSONRetries is how many times an LLM backend is re-asked after returning malformed JSON
	MaxJSONRetries = 3
)

// Frame encoding constants
const (
	// DiagnosticEncodeFailed is reported when an annotated frame cannot be encoded
	DiagnosticEncodeFailed = "Frame encode failed"

	// FrameJPEGQuality is the JPEG quality of annotated frames returned to callers
	FrameJPEGQuality = 80
)
