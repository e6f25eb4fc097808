// Package imageopt re-encodes JPEG and PNG images to smaller files.
package imageopt

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	DefaultJPEGQuality = 80
	DefaultMaxWidth    = 1920
)

type Options struct {
	JPEGQuality int
	// MaxWidth caps the width of JPEG images; 0 disables resizing.
	MaxWidth int
}

func DefaultOptions() Options {
	return Options{JPEGQuality: DefaultJPEGQuality, MaxWidth: DefaultMaxWidth}
}

// Supported reports whether name has an extension Optimize handles.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Optimize returns the re-encoded image, or src itself when the result would
// not be smaller. Unsupported formats are returned unchanged.
func Optimize(name string, src []byte, opts Options) ([]byte, error) {
	var out []byte
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		out, err = optimizeJPEG(src, opts)
	case ".png":
		out, err = optimizePNG(src)
	default:
		return src, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error optimizing %s: %w", name, err)
	}
	if len(out) >= len(src) {
		return src, nil
	}
	return out, nil
}

func optimizeJPEG(src []byte, opts Options) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	img = resize(img, opts.MaxWidth)

	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func optimizePNG(src []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func resize(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	newH := h * maxWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
