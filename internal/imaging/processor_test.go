// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	p := NewProcessor()
	res, err := p.Normalize(bytes.NewReader(encodeTestJPEG(t, 800, 600)), "board.jpeg")
	require.NoError(t, err)

	assert.Equal(t, 800, res.Width)
	assert.Equal(t, 600, res.Height)
	assert.Equal(t, "image/jpeg", res.MimeType)
	assert.Equal(t, "board.jpg", res.Filename)
}

func TestNormalizeDownscalesLargeImages(t *testing.T) {
	p := NewProcessor()
	res, err := p.Normalize(bytes.NewReader(encodeTestJPEG(t, 4000, 2000)), "huge.jpg")
	require.NoError(t, err)

	assert.Equal(t, MaxDimension, res.Width)
	assert.Equal(t, 960, res.Height)
}

func TestNormalizeConvertsPNGToJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	res, err := NewProcessor().Normalize(&buf, "shot.png")
	require.NoError(t, err)

	assert.Equal(t, "shot.jpg", res.Filename)
	assert.Equal(t, "image/jpeg", res.MimeType)

	decoded, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 10, decoded.Bounds().Dx())
}

func TestNormalizeRejectsNonImages(t *testing.T) {
	_, err := NewProcessor().Normalize(strings.NewReader("not an image at all"), "file.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestNormalizeRejectsOversizedUploads(t *testing.T) {
	big := bytes.Repeat([]byte{0xFF}, MaxUploadBytes+1)
	_, err := NewProcessor().Normalize(bytes.NewReader(big), "big.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestJPEGFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"photo.png", "photo.jpg"},
		{"photo.JPEG", "photo.jpg"},
		{"noext", "noext.jpg"},
		{"", "photo.jpg"},
		{"archive.tar.gz", "archive.tar.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, jpegFilename(tt.in), "input %q", tt.in)
	}
}
