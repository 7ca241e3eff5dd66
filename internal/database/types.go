package database

import (
	"time"

	"github.com/google/uuid"
)

// EmotionSnapshot is a frame persisted because a rapid emotion switch was detected.
// Snapshots are append-only: never updated, never deleted by this service.
type EmotionSnapshot struct {
	ID         string    `json:"id"`
	Emotion    string    `json:"emotion"`
	Filename   string    `json:"filename"` // staging filename under the snapshot dir
	Image      []byte    `json:"-"`        // JPEG payload, omitted from listings
	CapturedAt time.Time `json:"captured_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSnapshot returns a snapshot with a fresh ID. CreatedAt is set by the store.
func NewSnapshot(emotion, filename string, image []byte, capturedAt time.Time) *EmotionSnapshot {
	return &EmotionSnapshot{
		ID:         uuid.NewString(),
		Emotion:    emotion,
		Filename:   filename,
		Image:      image,
		CapturedAt: capturedAt,
	}
}

// SnapshotFilter narrows snapshot listings.
type SnapshotFilter struct {
	Emotion string // exact canonical label, empty for all
	Limit   int
	Offset  int
}

// Normalized clamps Limit to [1, MaxListLimit] and Offset to >= 0.
func (f SnapshotFilter) Normalized() SnapshotFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// EmotionCount is the number of snapshots stored for one emotion.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}
