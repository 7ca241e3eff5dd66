package monitor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kozaktomas/carecam/internal/constants"
)

var captionColor = color.RGBA{G: 255, A: 255}

// Annotate returns a copy of img with "Emotion: <label>" drawn near the top left.
// img itself is left untouched.
func Annotate(img image.Image, label string) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	face := basicfont.Face7x13
	text := "Emotion: " + label
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	height := ascent + metrics.Descent.Ceil()

	// Render at native size, then scale up onto the frame with the baseline at the overlay point.
	caption := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  caption,
		Src:  image.NewUniform(captionColor),
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)

	scale := constants.OverlayScale
	top := constants.OverlayY - ascent*scale
	target := image.Rect(constants.OverlayX, top, constants.OverlayX+width*scale, top+height*scale)
	draw.NearestNeighbor.Scale(dst, target, caption, caption.Bounds(), draw.Over, nil)
	return dst
}

// EncodeJPEG encodes img at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
