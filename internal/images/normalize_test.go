package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A 1x1 lossless WEBP with an alpha channel.
const webpFixtureBase64 = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func webpBytes(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(webpFixtureBase64)
	require.NoError(t, err)
	return data
}

func testImageBytes(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func pngBytes(t *testing.T) []byte {
	return testImageBytes(t, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})
}

func jpegBytes(t *testing.T) []byte {
	return testImageBytes(t, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, nil)
	})
}

func TestNormalizeJPEGStaysJPEG(t *testing.T) {
	encoded, ext, err := Normalize(jpegBytes(t), MimeJPEG)
	require.NoError(t, err)
	assert.Equal(t, ExtJPEG, ext)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestNormalizePNGStaysPNG(t *testing.T) {
	encoded, ext, err := Normalize(pngBytes(t), MimePNG)
	require.NoError(t, err)
	assert.Equal(t, ExtPNG, ext)

	_, format, err := image.DecodeConfig(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestNormalizeWEBPBecomesPNG(t *testing.T) {
	encoded, ext, err := Normalize(webpBytes(t), MimeWEBP)
	require.NoError(t, err)
	assert.Equal(t, ExtPNG, ext)

	img, format, err := image.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())

	// The source alpha channel is discarded during flattening.
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestNormalizeRejectsUndecodableBytes(t *testing.T) {
	for _, mimeType := range []string{MimeJPEG, MimePNG, MimeWEBP} {
		_, _, err := Normalize([]byte("not an image"), mimeType)
		assert.ErrorIs(t, err, ErrInvalidSource, "mime %s", mimeType)
	}
}

func TestNormalizeRejectsUnknownMimeType(t *testing.T) {
	_, _, err := Normalize(pngBytes(t), "image/gif")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestFlattenDiscardsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})

	flat := flatten(img)
	_, _, _, a := flat.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}
