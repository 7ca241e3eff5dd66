package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kozaktomas/carecam/internal/database"
)

func newMockRepo(t *testing.T) (*SnapshotRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSnapshotRepository(NewPoolFromDB(db)), mock
}

func TestSnapshotRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	captured := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	created := captured.Add(time.Second)
	s := database.NewSnapshot("sad", "emotion_sad_2024-06-01_08-00-00.jpg", []byte{0xFF, 0xD8}, captured)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO emotion_snapshots")).
		WithArgs(s.ID, "sad", s.Filename, s.Image, captured).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	if err := repo.CreateSnapshot(context.Background(), s); err != nil {
		t.Fatalf("CreateSnapshot failed: %v", err)
	}
	if !s.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, s.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSnapshotRepository_CreateError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("INSERT INTO emotion_snapshots").WillReturnError(errors.New("disk full"))

	err := repo.CreateSnapshot(context.Background(), database.NewSnapshot("sad", "f.jpg", nil, time.Now()))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSnapshotRepository_GetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id, emotion, filename, image").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "emotion", "filename", "image", "captured_at", "created_at"}))

	s, err := repo.GetSnapshot(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil snapshot, got %+v", s)
	}
}

func TestSnapshotRepository_Get(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, emotion, filename, image").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "emotion", "filename", "image", "captured_at", "created_at"}).
			AddRow("abc", "fear", "f.jpg", []byte{1, 2, 3}, at, at))

	s, err := repo.GetSnapshot(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil || s.Emotion != "fear" || len(s.Image) != 3 {
		t.Errorf("unexpected snapshot %+v", s)
	}
}

func TestSnapshotRepository_ListWithEmotion(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE emotion = $1 ORDER BY captured_at DESC, id LIMIT $2 OFFSET $3")).
		WithArgs("happy", 10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "emotion", "filename", "captured_at", "created_at"}).
			AddRow("a", "happy", "a.jpg", at, at).
			AddRow("b", "happy", "b.jpg", at.Add(-time.Minute), at))

	list, err := repo.ListSnapshots(context.Background(), database.SnapshotFilter{Emotion: "happy", Limit: 10, Offset: 5})
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" {
		t.Errorf("unexpected list %+v", list)
	}
	if list[0].Image != nil {
		t.Error("listing must not load images")
	}
}

func TestSnapshotRepository_ListDefaultsLimit(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY captured_at DESC, id LIMIT $1 OFFSET $2")).
		WithArgs(database.DefaultListLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "emotion", "filename", "captured_at", "created_at"}))

	list, err := repo.ListSnapshots(context.Background(), database.SnapshotFilter{})
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSnapshotRepository_Count(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM emotion_snapshots WHERE emotion = $1")).
		WithArgs("sad").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountSnapshots(context.Background(), database.SnapshotFilter{Emotion: "sad"})
	if err != nil {
		t.Fatalf("CountSnapshots failed: %v", err)
	}
	if count != 7 {
		t.Errorf("expected 7, got %d", count)
	}
}

func TestSnapshotRepository_CountByEmotion(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("GROUP BY emotion").
		WillReturnRows(sqlmock.NewRows([]string{"emotion", "count"}).AddRow("happy", 3).AddRow("sad", 1))

	counts, err := repo.CountByEmotion(context.Background())
	if err != nil {
		t.Fatalf("CountByEmotion failed: %v", err)
	}
	if len(counts) != 2 || counts[0].Emotion != "happy" || counts[0].Count != 3 {
		t.Errorf("unexpected counts %+v", counts)
	}
}
