package camera

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

// JPEG markers used when patching MJPEG frames.
const (
	markerSOI = 0xD8
	markerDHT = 0xC4
	markerSOS = 0xDA
)

var (
	huffmanOnce    sync.Once
	huffmanSegment []byte
)

// DecodeYUYV converts a packed YUYV 4:2:2 buffer into an image.
func DecodeYUYV(data []byte, width, height int) (*image.YCbCr, error) {
	if width <= 0 || height <= 0 || width%2 != 0 {
		return nil, fmt.Errorf("invalid YUYV frame size %dx%d", width, height)
	}
	if want := width * height * 2; len(data) < want {
		return nil, fmt.Errorf("short YUYV frame: got %d bytes, want %d", len(data), want)
	}

	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	for y := range height {
		row := data[y*width*2 : (y+1)*width*2]
		for x := 0; x < width; x += 2 {
			i := x * 2
			img.Y[y*img.YStride+x] = row[i]
			img.Y[y*img.YStride+x+1] = row[i+2]
			img.Cb[y*img.CStride+x/2] = row[i+1]
			img.Cr[y*img.CStride+x/2] = row[i+3]
		}
	}
	return img, nil
}

// DecodeMJPEG decodes one MJPEG frame. Many UVC cameras omit the Huffman
// tables and rely on the standard ones, which are inserted when missing.
func DecodeMJPEG(data []byte) (image.Image, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, errors.New("not a JPEG frame")
	}
	img, err := jpeg.Decode(bytes.NewReader(withHuffmanTables(data)))
	if err != nil {
		return nil, fmt.Errorf("decode MJPEG frame: %w", err)
	}
	return img, nil
}

// withHuffmanTables returns data with the standard DHT segment inserted before
// the start of scan when the frame defines no Huffman tables itself.
func withHuffmanTables(data []byte) []byte {
	sos := -1
	for i := 2; i+3 < len(data); {
		if data[i] != 0xFF {
			return data
		}
		marker := data[i+1]
		if marker == markerDHT {
			return data
		}
		if marker == markerSOS {
			sos = i
			break
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		i += 2 + length
	}
	if sos < 0 {
		return data
	}

	dht := standardHuffmanSegment()
	out := make([]byte, 0, len(data)+len(dht))
	out = append(out, data[:sos]...)
	out = append(out, dht...)
	out = append(out, data[sos:]...)
	return out
}

// standardHuffmanSegment returns the DHT segment written by image/jpeg, which
// uses the tables from Annex K of the JPEG standard.
func standardHuffmanSegment() []byte {
	huffmanOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		img.Set(0, 0, color.RGBA{R: 255, A: 255})
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return
		}
		huffmanSegment = extractSegments(buf.Bytes(), markerDHT)
	})
	return huffmanSegment
}

// extractSegments concatenates every segment with the given marker that
// appears before the start of scan.
func extractSegments(data []byte, want byte) []byte {
	var out []byte
	for i := 2; i+3 < len(data); {
		if data[i] != 0xFF {
			break
		}
		marker := data[i+1]
		if marker == markerSOS {
			break
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		end := i + 2 + length
		if end > len(data) {
			break
		}
		if marker == want {
			out = append(out, data[i:end]...)
		}
		i = end
	}
	return out
}
