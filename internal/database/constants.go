package database

// Listing limits
const (
	// DefaultListLimit is used when a listing does not ask for a limit
	DefaultListLimit = 50

	// MaxListLimit caps a single listing page
	MaxListLimit = 500
)

// Schema names shared by all backends
const (
	// SnapshotsTable holds EmotionSnapshot rows
	SnapshotsTable = "emotion_snapshots"

	// MigrationsTable records applied migration files
	MigrationsTable = "schema_migrations"
)
