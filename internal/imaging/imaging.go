// Package imaging checks uploaded pictures and re-encodes them for the web.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
)

const (
	MaxUploadBytes = 5 << 20
	MaxWidth       = 1200

	ContentType = "image/webp"
	Extension   = ".webp"
)

// Normalize accepts JPEG or PNG up to MaxUploadBytes, downsizes it to
// MaxWidth and returns it encoded as WebP.
func Normalize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, httperr.ErrValidation("empty_file", "No file uploaded")
	}
	if len(data) > MaxUploadBytes {
		return nil, httperr.ErrValidation("file_too_large", "File size exceeds the 5MB limit")
	}

	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
	default:
		return nil, httperr.ErrValidation("unsupported_file_type", "Only JPEG and PNG images are allowed")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, httperr.ErrValidation("invalid_image", "Image could not be decoded")
	}

	img = fit(img, MaxWidth)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func fit(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if b.Dx() <= maxWidth {
		return src
	}

	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
