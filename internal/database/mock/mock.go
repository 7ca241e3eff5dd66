// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/carecam/internal/database"
)

// MockSnapshotStore is an in-memory implementation of database.SnapshotStore
type MockSnapshotStore struct {
	mu        sync.RWMutex
	snapshots []database.EmotionSnapshot

	// Error injection
	CreateError error
	GetError    error
	ListError   error
	CountError  error

	// Block, if set, is received from before CreateSnapshot writes.
	Block chan struct{}

	// Now stamps CreatedAt. Defaults to time.Now.
	Now func() time.Time
}

// NewMockSnapshotStore creates an empty mock snapshot store
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{Now: time.Now}
}

// AddSnapshot seeds a snapshot without going through CreateSnapshot
func (m *MockSnapshotStore) AddSnapshot(s database.EmotionSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, s)
}

// Snapshots returns a copy of everything stored, in insertion order
func (m *MockSnapshotStore) Snapshots() []database.EmotionSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.EmotionSnapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// CreateSnapshot stores a snapshot, honoring context cancellation while blocked
func (m *MockSnapshotStore) CreateSnapshot(ctx context.Context, s *database.EmotionSnapshot) error {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	s.CreatedAt = now()
	m.snapshots = append(m.snapshots, *s)
	return nil
}

// GetSnapshot retrieves a snapshot by ID, nil if absent
func (m *MockSnapshotStore) GetSnapshot(ctx context.Context, id string) (*database.EmotionSnapshot, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snapshots {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

// ListSnapshots returns metadata newest first, without images
func (m *MockSnapshotStore) ListSnapshots(ctx context.Context, filter database.SnapshotFilter) ([]database.EmotionSnapshot, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	filter = filter.Normalized()

	matched := m.filtered(filter.Emotion)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CapturedAt.After(matched[j].CapturedAt)
	})

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	page := matched[filter.Offset:end]
	for i := range page {
		page[i].Image = nil
	}
	return page, nil
}

// CountSnapshots counts snapshots matching the emotion filter
func (m *MockSnapshotStore) CountSnapshots(ctx context.Context, filter database.SnapshotFilter) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	return len(m.filtered(filter.Emotion)), nil
}

// CountByEmotion returns per-emotion totals ordered by emotion
func (m *MockSnapshotStore) CountByEmotion(ctx context.Context) ([]database.EmotionCount, error) {
	if m.CountError != nil {
		return nil, m.CountError
	}
	m.mu.RLock()
	totals := make(map[string]int)
	for _, s := range m.snapshots {
		totals[s.Emotion]++
	}
	m.mu.RUnlock()

	counts := make([]database.EmotionCount, 0, len(totals))
	for emotion, n := range totals {
		counts = append(counts, database.EmotionCount{Emotion: emotion, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Emotion < counts[j].Emotion })
	return counts, nil
}

func (m *MockSnapshotStore) filtered(emotion string) []database.EmotionSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.EmotionSnapshot
	for _, s := range m.snapshots {
		if emotion == "" || s.Emotion == emotion {
			out = append(out, s)
		}
	}
	return out
}

var _ database.SnapshotStore = (*MockSnapshotStore)(nil)
