// Package imageenc converts raster images to and from encoded bytes.
package imageenc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEGIF  = "image/gif"
)

// JPEGQuality is used whenever an engine asks for its native JPEG encoding.
const JPEGQuality = 80

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Encode writes img in the format named by mimeType.
func Encode(img image.Image, mimeType string) ([]byte, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	var buf bytes.Buffer
	var err error
	switch mimeType {
	case MIMEPNG:
		err = png.Encode(&buf, img)
	case MIMEJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	case MIMEGIF:
		err = gif.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decodes an encoded image and reports its detected MIME type.
func Decode(data []byte) (image.Image, string, error) {
	mediaType := mimetype.Detect(data).String()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, mediaType, err
	}
	return img, mediaType, nil
}

// ReadFile decodes the image stored at path.
func ReadFile(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return Decode(data)
}

// DataURL renders data as a base64 data URL.
func DataURL(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// IsImage reports whether mimeType names an image type.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
