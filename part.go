package genchat

import (
	"image"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/genchat/internal/imageenc"
)

// Part is one atomic unit of a Turn. The set of parts is closed: Text, Image
// and Blob are the only implementations.
type Part interface {
	isPart()
}

// Text is a plain text part.
type Text struct {
	Value string
}

// Image is a raster image part. An empty MIMEType lets the engine pick its
// native image encoding; a non-empty one forces the image through the blob
// channel encoded as that type.
type Image struct {
	Pixels   image.Image
	MIMEType string
}

// Blob is arbitrary binary data with a declared MIME type.
type Blob struct {
	Data     []byte
	MIMEType string
}

func (Text) isPart()  {}
func (Image) isPart() {}
func (Blob) isPart()  {}

// NewText returns a Text part.
func NewText(s string) Text {
	return Text{Value: s}
}

// NewImage returns an Image part. mimeType may be empty.
func NewImage(pixels image.Image, mimeType string) Image {
	return Image{Pixels: pixels, MIMEType: mimeType}
}

// NewBlob returns a Blob part. A blob always carries a MIME type.
func NewBlob(data []byte, mimeType string) (Blob, error) {
	if mimeType == "" {
		return Blob{}, ErrMissingMIMEType
	}
	return Blob{Data: data, MIMEType: mimeType}, nil
}

// DetectBlob returns a Blob whose MIME type is sniffed from data.
func DetectBlob(data []byte) Blob {
	return Blob{Data: data, MIMEType: mimetype.Detect(data).String()}
}

// PartKind names the kind of a part the way the engine boundary does.
func PartKind(p Part) Kind {
	switch p.(type) {
	case Text:
		return KindText
	case Image:
		return KindImage
	case Blob:
		return KindBlob
	}
	return ""
}

// ImageFromFile decodes a png, jpeg or gif file. The returned part leaves
// the encoding to the engine.
func ImageFromFile(path string) (Image, error) {
	img, _, err := imageenc.ReadFile(path)
	if err != nil {
		return Image{}, err
	}
	return Image{Pixels: img}, nil
}

// BlobFromFile reads path into a Blob with a sniffed MIME type.
func BlobFromFile(path string) (Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Blob{}, err
	}
	return DetectBlob(data), nil
}
