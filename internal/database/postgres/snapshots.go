package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/carecam/internal/database"
)

// SnapshotRepository provides PostgreSQL-backed emotion snapshot storage
type SnapshotRepository struct {
	pool *Pool
}

// NewSnapshotRepository creates a new PostgreSQL snapshot repository
func NewSnapshotRepository(pool *Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// CreateSnapshot inserts a snapshot and fills in CreatedAt
func (r *SnapshotRepository) CreateSnapshot(ctx context.Context, s *database.EmotionSnapshot) error {
	query := `
		INSERT INTO emotion_snapshots (id, emotion, filename, image, captured_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, s.ID, s.Emotion, s.Filename, s.Image, s.CapturedAt).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves a snapshot with its image, returns nil if not found
func (r *SnapshotRepository) GetSnapshot(ctx context.Context, id string) (*database.EmotionSnapshot, error) {
	query := `
		SELECT id, emotion, filename, image, captured_at, created_at
		FROM emotion_snapshots
		WHERE id = $1
	`

	var s database.EmotionSnapshot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Emotion,
		&s.Filename,
		&s.Image,
		&s.CapturedAt,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &s, nil
}

// ListSnapshots returns snapshot metadata, newest capture first
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, filter database.SnapshotFilter) ([]database.EmotionSnapshot, error) {
	filter = filter.Normalized()

	var b strings.Builder
	b.WriteString("SELECT id, emotion, filename, captured_at, created_at FROM emotion_snapshots")
	args := []any{}
	if filter.Emotion != "" {
		args = append(args, filter.Emotion)
		fmt.Fprintf(&b, " WHERE emotion = $%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&b, " ORDER BY captured_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []database.EmotionSnapshot
	for rows.Next() {
		var s database.EmotionSnapshot
		if err := rows.Scan(&s.ID, &s.Emotion, &s.Filename, &s.CapturedAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// CountSnapshots returns the number of snapshots matching the filter
func (r *SnapshotRepository) CountSnapshots(ctx context.Context, filter database.SnapshotFilter) (int, error) {
	query := "SELECT COUNT(*) FROM emotion_snapshots"
	var args []any
	if filter.Emotion != "" {
		query += " WHERE emotion = $1"
		args = append(args, filter.Emotion)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return count, nil
}

// CountByEmotion returns per-emotion snapshot totals
func (r *SnapshotRepository) CountByEmotion(ctx context.Context) ([]database.EmotionCount, error) {
	rows, err := r.pool.Query(ctx, "SELECT emotion, COUNT(*) FROM emotion_snapshots GROUP BY emotion ORDER BY emotion")
	if err != nil {
		return nil, fmt.Errorf("count by emotion: %w", err)
	}
	defer rows.Close()

	var counts []database.EmotionCount
	for rows.Next() {
		var c database.EmotionCount
		if err := rows.Scan(&c.Emotion, &c.Count); err != nil {
			return nil, fmt.Errorf("scan emotion count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emotion counts: %w", err)
	}
	return counts, nil
}
