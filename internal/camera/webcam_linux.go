//go:build linux

package camera

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/blackjack/webcam"
)

// V4L2 pixel formats (fourcc, little endian).
const (
	pixelFormatMJPEG webcam.PixelFormat = 0x47504A4D // MJPG
	pixelFormatYUYV  webcam.PixelFormat = 0x56595559 // YUYV
)

// V4L2Device captures from a Video4Linux2 device node such as /dev/video0.
type V4L2Device struct {
	path          string
	width, height uint32

	cam    *webcam.Webcam
	format webcam.PixelFormat
	frameW int
	frameH int
}

func newV4L2Device(path string, width, height int) Device {
	return &V4L2Device{path: path, width: uint32(width), height: uint32(height)}
}

func (d *V4L2Device) Open() error {
	if d.cam != nil {
		return nil
	}

	cam, err := webcam.Open(d.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.path, err)
	}

	supported := cam.GetSupportedFormats()
	format := pixelFormatMJPEG
	if _, ok := supported[format]; !ok {
		format = pixelFormatYUYV
		if _, ok := supported[format]; !ok {
			cam.Close()
			return fmt.Errorf("%s supports neither MJPEG nor YUYV", d.path)
		}
	}

	got, w, h, err := cam.SetImageFormat(format, d.width, d.height)
	if err != nil {
		cam.Close()
		return fmt.Errorf("set image format: %w", err)
	}
	// Keep latency low: only a couple of queued buffers.
	if err := cam.SetBufferCount(2); err != nil {
		cam.Close()
		return fmt.Errorf("set buffer count: %w", err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return fmt.Errorf("start streaming: %w", err)
	}

	d.cam = cam
	d.format = got
	d.frameW = int(w)
	d.frameH = int(h)
	return nil
}

func (d *V4L2Device) Read(timeout time.Duration) (image.Image, error) {
	if d.cam == nil {
		return nil, errors.New("device not open")
	}

	// WaitForFrame takes whole seconds.
	seconds := uint32(math.Max(1, math.Ceil(timeout.Seconds())))
	if err := d.cam.WaitForFrame(seconds); err != nil {
		var timeoutErr *webcam.Timeout
		if errors.As(err, &timeoutErr) {
			return nil, fmt.Errorf("no frame within %s", timeout)
		}
		return nil, fmt.Errorf("wait for frame: %w", err)
	}

	data, err := d.cam.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty frame buffer")
	}

	switch d.format {
	case pixelFormatMJPEG:
		return DecodeMJPEG(data)
	case pixelFormatYUYV:
		return DecodeYUYV(data, d.frameW, d.frameH)
	default:
		return nil, fmt.Errorf("unsupported pixel format %#x", uint32(d.format))
	}
}

func (d *V4L2Device) Close() error {
	if d.cam == nil {
		return nil
	}
	cam := d.cam
	d.cam = nil

	stopErr := cam.StopStreaming()
	closeErr := cam.Close()
	return errors.Join(stopErr, closeErr)
}
