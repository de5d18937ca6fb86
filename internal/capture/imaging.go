package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Encoding defaults applied when a caller passes zero values.
const (
	DefaultQuality  = 85
	DefaultMaxWidth = 1920
)

// Process is the single downstream conversion step every capture path
// converges on: downscale to maxWidth when the capture is wider, then
// JPEG-encode at the requested quality.
func Process(img image.Image, quality, maxWidth int) (*Result, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	img = resizeToWidth(img, maxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &Result{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// resizeToWidth scales img down to maxWidth preserving aspect ratio.
// Images at or under maxWidth pass through untouched.
func resizeToWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
