package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// jpegQuality is the fixed quality used when re-encoding JPEG sources.
const jpegQuality = 85

// Extensions of the canonical on-disk formats.
const (
	ExtJPEG = "jpg"
	ExtPNG  = "png"
)

// Normalize decodes raw image bytes and re-encodes them into the
// canonical on-disk format: JPEG sources stay JPEG at quality 85, every
// other accepted source becomes PNG. WEBP frames are flattened onto an
// opaque background first, dropping any alpha or animation metadata.
// Returns the encoded bytes and the file extension to store them under.
func Normalize(data []byte, mimeType string) ([]byte, string, error) {
	switch mimeType {
	case MimeJPEG:
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: decoding jpeg: %v", ErrInvalidSource, err)
		}
		return encode(img, imaging.JPEG, ExtJPEG, imaging.JPEGQuality(jpegQuality))

	case MimeWEBP:
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: decoding webp: %v", ErrInvalidSource, err)
		}
		return encode(flatten(img), imaging.PNG, ExtPNG)

	case MimePNG:
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: decoding png: %v", ErrInvalidSource, err)
		}
		return encode(img, imaging.PNG, ExtPNG)

	default:
		return nil, "", fmt.Errorf("%w: no image format for mime type %q", ErrInvalidSource, mimeType)
	}
}

func encode(img image.Image, format imaging.Format, ext string, opts ...imaging.EncodeOption) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, "", fmt.Errorf("%w: encoding %s: %v", ErrInvalidSource, ext, err)
	}
	return buf.Bytes(), ext, nil
}

// flatten composites img over an opaque white background, discarding the
// alpha channel.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(background, img, image.Point{}, 1.0)
}
