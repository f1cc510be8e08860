// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded photos before they are forwarded to the
// backend: EXIF orientation is applied, oversized images are downscaled and
// everything is re-encoded as JPEG. The backend never sees raw camera output.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

const (
	// MaxDimension bounds the longest edge of a forwarded photo. Billboard
	// photos are display assets; anything larger only wastes upload time.
	MaxDimension = 1920

	// MaxUploadBytes bounds the raw upload we are willing to decode.
	MaxUploadBytes = 10 << 20

	jpegQuality = 85
)

// Result is a normalized photo ready for the backend multipart field.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
	Width    int
	Height   int
}

// Processor normalizes uploaded photos in memory.
type Processor struct {
	maxDimension int
}

// NewProcessor creates a photo processor.
func NewProcessor() *Processor {
	return &Processor{maxDimension: MaxDimension}
}

// Normalize reads an uploaded photo, applies EXIF orientation, downscales it
// to fit within the configured bound and re-encodes it as JPEG. The returned
// filename always carries a .jpg extension.
func (p *Processor) Normalize(reader io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(reader, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("photo exceeds %d byte limit", MaxUploadBytes)
	}

	if !isSupported(data) {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	if bounds.Dx() > p.maxDimension || bounds.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}

	return &Result{
		Data:     buf.Bytes(),
		Filename: jpegFilename(filename),
		MimeType: "image/jpeg",
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// isSupported reports whether the sniffed content type is a decodable image.
// TIFF is rejected explicitly (CVE-2023-36308 in disintegration/imaging).
func isSupported(data []byte) bool {
	contentType := http.DetectContentType(data)
	if strings.Contains(contentType, "tiff") {
		return false
	}
	for _, t := range []string{"jpeg", "png", "gif", "webp"} {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

// jpegFilename swaps the extension for .jpg, keeping the base name.
func jpegFilename(filename string) string {
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	if base == "" {
		base = "photo"
	}
	return base + ".jpg"
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
