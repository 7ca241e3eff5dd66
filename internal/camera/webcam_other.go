//go:build !linux

package camera

import (
	"errors"
	"image"
	"time"
)

type unsupportedDevice struct {
	path string
}

func newV4L2Device(path string, _, _ int) Device {
	return &unsupportedDevice{path: path}
}

func (d *unsupportedDevice) Open() error {
	return errors.New("V4L2 capture is only supported on linux")
}

func (d *unsupportedDevice) Read(time.Duration) (image.Image, error) {
	return nil, errors.New("device not open")
}

func (d *unsupportedDevice) Close() error { return nil }
