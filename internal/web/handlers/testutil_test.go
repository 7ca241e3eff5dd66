package handlers

import (
	"context"
	"image"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/carecam/internal/config"
	"github.com/kozaktomas/carecam/internal/database"
	"github.com/kozaktomas/carecam/internal/database/mock"
	"github.com/kozaktomas/carecam/internal/emotion"
	"github.com/kozaktomas/carecam/internal/monitor"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Camera:   config.CameraConfig{Enabled: true},
		AI:       config.AIConfig{Enabled: true, Provider: config.ProviderService},
		Detector: config.DetectorConfig{SwitchThreshold: 2 * time.Second},
		Emotions: []config.EmotionEntry{
			{Name: "happy", Aliases: []string{"joy"}},
			{Name: "sad"},
		},
	}
}

func testCatalog() *emotion.Catalog {
	return emotion.NewCatalog(testConfig().Emotions)
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// setupSnapshotStore registers an in-memory snapshot backend for the test.
func setupSnapshotStore(t *testing.T) *mock.MockSnapshotStore {
	t.Helper()
	store := mock.NewMockSnapshotStore()
	database.RegisterBackend("mock", store, nil)
	t.Cleanup(func() { database.Close() })
	return store
}

// fakeSession replays a fixed list of results, then keeps returning the last one.
type fakeSession struct {
	mu      sync.Mutex
	results []monitor.Result
	calls   int
	stops   int
	stopErr error
	cancels []context.CancelFunc
}

func (s *fakeSession) Attach(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()
	return ctx, cancel
}

func (s *fakeSession) NextFrame(ctx context.Context) monitor.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return monitor.Result{Err: err}
	}
	i := min(s.calls, len(s.results)-1)
	s.calls++
	return s.results[i]
}

func (s *fakeSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	return s.stopErr
}

func (s *fakeSession) Status() monitor.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return monitor.Status{CaptureEnabled: true, AIEnabled: true, Active: s.stops == 0, Frames: s.calls}
}

func frameResult(t *testing.T, label string) monitor.Result {
	t.Helper()
	data, err := monitor.EncodeJPEG(image.NewRGBA(image.Rect(0, 0, 8, 8)), 80)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}
	return monitor.Result{JPEG: data, Label: emotion.Classified(label)}
}
