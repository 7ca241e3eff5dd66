package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/carecam/internal/config"
	"github.com/kozaktomas/carecam/internal/database"
	"github.com/kozaktomas/carecam/internal/logging"
)

func openTestPool(t *testing.T) *Pool {
	t.Helper()
	pool, err := Open(filepath.Join(t.TempDir(), "carecam.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	if _, err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return pool
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := openTestPool(t)

	applied, err := pool.Migrate(context.Background())
	if err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected no pending migrations, got %v", applied)
	}
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "carecam.db")
	pool, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	pool.Close()
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSnapshotRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository(openTestPool(t))
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return created }
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	emotions := []string{"happy", "sad", "happy", "fear"}
	var ids []string
	for i, e := range emotions {
		s := database.NewSnapshot(e, fmt.Sprintf("emotion_%s_%d.jpg", e, i), []byte{0xFF, 0xD8, byte(i)}, base.Add(time.Duration(i)*time.Second))
		if err := repo.CreateSnapshot(ctx, s); err != nil {
			t.Fatalf("CreateSnapshot failed: %v", err)
		}
		if !s.CreatedAt.Equal(created) {
			t.Errorf("expected created_at %v, got %v", created, s.CreatedAt)
		}
		ids = append(ids, s.ID)
	}

	t.Run("Get", func(t *testing.T) {
		s, err := repo.GetSnapshot(ctx, ids[1])
		if err != nil {
			t.Fatalf("GetSnapshot failed: %v", err)
		}
		if s == nil {
			t.Fatal("expected snapshot")
		}
		if s.Emotion != "sad" || len(s.Image) != 3 || s.Image[2] != 1 {
			t.Errorf("unexpected snapshot %+v", s)
		}
		if !s.CapturedAt.Equal(base.Add(time.Second)) {
			t.Errorf("unexpected captured_at %v", s.CapturedAt)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s, err := repo.GetSnapshot(ctx, "missing")
		if err != nil || s != nil {
			t.Errorf("expected (nil, nil), got (%+v, %v)", s, err)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		list, err := repo.ListSnapshots(ctx, database.SnapshotFilter{})
		if err != nil {
			t.Fatalf("ListSnapshots failed: %v", err)
		}
		if len(list) != 4 {
			t.Fatalf("expected 4, got %d", len(list))
		}
		if list[0].Emotion != "fear" || list[3].ID != ids[0] {
			t.Errorf("unexpected order %+v", list)
		}
		if list[0].Image != nil {
			t.Error("listing must not load images")
		}
	})

	t.Run("ListFilterAndPage", func(t *testing.T) {
		list, err := repo.ListSnapshots(ctx, database.SnapshotFilter{Emotion: "happy", Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("ListSnapshots failed: %v", err)
		}
		if len(list) != 1 || list[0].ID != ids[0] {
			t.Errorf("unexpected page %+v", list)
		}
	})

	t.Run("Count", func(t *testing.T) {
		all, err := repo.CountSnapshots(ctx, database.SnapshotFilter{})
		if err != nil {
			t.Fatalf("CountSnapshots failed: %v", err)
		}
		happy, err := repo.CountSnapshots(ctx, database.SnapshotFilter{Emotion: "happy"})
		if err != nil {
			t.Fatalf("CountSnapshots failed: %v", err)
		}
		if all != 4 || happy != 2 {
			t.Errorf("expected 4/2, got %d/%d", all, happy)
		}
	})

	t.Run("CountByEmotion", func(t *testing.T) {
		counts, err := repo.CountByEmotion(ctx)
		if err != nil {
			t.Fatalf("CountByEmotion failed: %v", err)
		}
		want := []database.EmotionCount{{Emotion: "fear", Count: 1}, {Emotion: "happy", Count: 2}, {Emotion: "sad", Count: 1}}
		if len(counts) != len(want) {
			t.Fatalf("expected %d rows, got %d", len(want), len(counts))
		}
		for i := range want {
			if counts[i] != want[i] {
				t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
			}
		}
	})
}

func TestSnapshotRepository_DuplicateID(t *testing.T) {
	repo := NewSnapshotRepository(openTestPool(t))
	s := database.NewSnapshot("sad", "a.jpg", []byte{1}, time.Now())

	if err := repo.CreateSnapshot(context.Background(), s); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := repo.CreateSnapshot(context.Background(), s); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestSnapshotRepository_ConcurrentWrites(t *testing.T) {
	repo := NewSnapshotRepository(openTestPool(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.CreateSnapshot(ctx, database.NewSnapshot("happy", fmt.Sprintf("%d.jpg", i), []byte{1}, time.Now()))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent insert failed: %v", err)
		}
	}
	count, err := repo.CountSnapshots(ctx, database.SnapshotFilter{})
	if err != nil {
		t.Fatalf("CountSnapshots failed: %v", err)
	}
	if count != 20 {
		t.Errorf("expected 20 snapshots, got %d", count)
	}
}

func TestInitialize_RegistersBackend(t *testing.T) {
	t.Cleanup(func() { database.Close() })

	cfg := &config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "carecam.db")}
	if err := Initialize(cfg, logging.Discard()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if database.BackendName() != config.DriverSQLite {
		t.Errorf("expected sqlite backend, got %q", database.BackendName())
	}

	writer, err := database.GetSnapshotWriter(context.Background())
	if err != nil {
		t.Fatalf("GetSnapshotWriter failed: %v", err)
	}
	if err := writer.CreateSnapshot(context.Background(), database.NewSnapshot("sad", "x.jpg", []byte{1}, time.Now())); err != nil {
		t.Errorf("CreateSnapshot failed: %v", err)
	}
}
