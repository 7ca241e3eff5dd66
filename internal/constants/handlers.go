package constants

// Handler pagination constants
const (
	// DefaultHandlerPageSize is the page size for paginated handler endpoints
	DefaultHandlerPageSize = 50

	// MaxHandlerPageSize caps the limit query parameter
	MaxHandlerPageSize = 500

	// ExportPageSize is the page size used when exporting snapshots from the CLI
	ExportPageSize = 100
)

// Stream constants
const (
	// StreamBoundary separates parts of the MJPEG stream
	StreamBoundary = "carecamframe"

	// DefaultStreamIntervalMillis is the pause, in milliseconds, between frames of the MJPEG stream
	DefaultStreamIntervalMillis = 200
)
