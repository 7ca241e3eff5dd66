package camera

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/carecam/internal/config"
)

func writePNG(t *testing.T, path string, w int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	img := image.NewRGBA(image.Rect(0, 0, w, 4))
	img.Set(0, 0, color.White)
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestReplayDevice_LoopsInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 8)
	writePNG(t, filepath.Join(dir, "a.png"), 4)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644)

	dev := NewReplayDevice(dir)
	if err := dev.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dev.Close()

	widths := []int{4, 8, 4}
	for i, want := range widths {
		img, err := dev.Read(time.Second)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if img.Bounds().Dx() != want {
			t.Errorf("read %d: expected width %d, got %d", i, want, img.Bounds().Dx())
		}
	}
}

func TestReplayDevice_EmptyDir(t *testing.T) {
	if err := NewReplayDevice(t.TempDir()).Open(); err == nil {
		t.Error("expected error for directory without images")
	}
}

func TestReplayDevice_ReadBeforeOpen(t *testing.T) {
	if _, err := NewReplayDevice(t.TempDir()).Read(time.Second); err == nil {
		t.Error("expected error")
	}
}

func TestNewDevice_DirectoryReplays(t *testing.T) {
	dev := NewDevice(config.CameraConfig{Device: t.TempDir()})
	if _, ok := dev.(*ReplayDevice); !ok {
		t.Errorf("expected *ReplayDevice, got %T", dev)
	}
}
