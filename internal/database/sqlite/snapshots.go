package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/carecam/internal/database"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// SnapshotRepository provides SQLite-backed emotion snapshot storage
type SnapshotRepository struct {
	pool *Pool
	now  func() time.Time
}

func NewSnapshotRepository(pool *Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool, now: time.Now}
}

func (r *SnapshotRepository) CreateSnapshot(ctx context.Context, s *database.EmotionSnapshot) error {
	createdAt := fromMillis(toMillis(r.now()))
	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO emotion_snapshots (id, emotion, filename, image, captured_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Emotion, s.Filename, s.Image, toMillis(s.CapturedAt), toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	s.CreatedAt = createdAt
	return nil
}

func (r *SnapshotRepository) GetSnapshot(ctx context.Context, id string) (*database.EmotionSnapshot, error) {
	var (
		s                     database.EmotionSnapshot
		capturedAt, createdAt int64
	)
	err := r.pool.db.QueryRowContext(ctx,
		`SELECT id, emotion, filename, image, captured_at, created_at FROM emotion_snapshots WHERE id = ?`, id,
	).Scan(&s.ID, &s.Emotion, &s.Filename, &s.Image, &capturedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	s.CapturedAt = fromMillis(capturedAt)
	s.CreatedAt = fromMillis(createdAt)
	return &s, nil
}

func (r *SnapshotRepository) ListSnapshots(ctx context.Context, filter database.SnapshotFilter) ([]database.EmotionSnapshot, error) {
	filter = filter.Normalized()

	query := "SELECT id, emotion, filename, captured_at, created_at FROM emotion_snapshots"
	var args []any
	if filter.Emotion != "" {
		query += " WHERE emotion = ?"
		args = append(args, filter.Emotion)
	}
	query += " ORDER BY captured_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []database.EmotionSnapshot
	for rows.Next() {
		var (
			s                     database.EmotionSnapshot
			capturedAt, createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.Emotion, &s.Filename, &capturedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.CapturedAt = fromMillis(capturedAt)
		s.CreatedAt = fromMillis(createdAt)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *SnapshotRepository) CountSnapshots(ctx context.Context, filter database.SnapshotFilter) (int, error) {
	query := "SELECT COUNT(*) FROM emotion_snapshots"
	var args []any
	if filter.Emotion != "" {
		query += " WHERE emotion = ?"
		args = append(args, filter.Emotion)
	}

	var count int
	if err := r.pool.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return count, nil
}

func (r *SnapshotRepository) CountByEmotion(ctx context.Context) ([]database.EmotionCount, error) {
	rows, err := r.pool.db.QueryContext(ctx, "SELECT emotion, COUNT(*) FROM emotion_snapshots GROUP BY emotion ORDER BY emotion")
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
