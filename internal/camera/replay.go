package camera

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kozaktomas/carecam/internal/config"
)

// ReplayDevice plays back image files from a directory in name order, looping.
// It stands in for a camera on machines without one.
type ReplayDevice struct {
	dir   string
	files []string
	index int
	open  bool
}

func NewReplayDevice(dir string) *ReplayDevice {
	return &ReplayDevice{dir: dir}
}

func (d *ReplayDevice) Open() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("read replay dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(d.dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no images in %s", d.dir)
	}
	slices.Sort(files)

	d.files = files
	d.index = 0
	d.open = true
	return nil
}

func (d *ReplayDevice) Read(time.Duration) (image.Image, error) {
	if !d.open {
		return nil, errors.New("device not open")
	}

	path := d.files[d.index]
	d.index = (d.index + 1) % len(d.files)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (d *ReplayDevice) Close() error {
	d.open = false
	d.files = nil
	return nil
}

// NewDevice picks the device for cfg: a directory path replays images,
// anything else is treated as a V4L2 device node.
func NewDevice(cfg config.CameraConfig) Device {
	if info, err := os.Stat(cfg.Device); err == nil && info.IsDir() {
		return NewReplayDevice(cfg.Device)
	}
	return newV4L2Device(cfg.Device, cfg.Width, cfg.Height)
}
