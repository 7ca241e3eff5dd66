package database

import (
	"context"
)

// SnapshotReader provides read-only access to emotion snapshots
type SnapshotReader interface {
	// GetSnapshot retrieves a snapshot including its image, returns nil if not found
	GetSnapshot(ctx context.Context, id string) (*EmotionSnapshot, error)
	// ListSnapshots returns snapshot metadata, newest capture first. Image is not loaded.
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]EmotionSnapshot, error)
	// CountSnapshots returns the number of snapshots matching the filter (limit/offset ignored)
	CountSnapshots(ctx context.Context, filter SnapshotFilter) (int, error)
	// CountByEmotion returns per-emotion totals ordered by emotion
	CountByEmotion(ctx context.Context) ([]EmotionCount, error)
}

// SnapshotWriter provides write access to emotion snapshots
type SnapshotWriter interface {
	// CreateSnapshot stores a new snapshot. CreatedAt is filled in on success.
	CreateSnapshot(ctx context.Context, s *EmotionSnapshot) error
}

// SnapshotStore is a backend that both reads and writes snapshots.
type SnapshotStore interface {
	SnapshotReader
	SnapshotWriter
}
