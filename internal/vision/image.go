package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Image is a validated encoded image.
type Image struct {
	Data     []byte
	MIMEType string
	Format   string
	Width    int
	Height   int
}

// Extension returns the file extension for the detected type, without a dot.
func (i Image) Extension() string {
	if mt := mimetype.Lookup(i.MIMEType); mt != nil && mt.Extension() != "" {
		return strings.TrimPrefix(mt.Extension(), ".")
	}
	return i.Format
}

// DecodeImage checks that data is a non-empty JPEG, PNG, GIF, WebP, or BMP
// image and reports its detected type and dimensions.
func DecodeImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty data", ErrInvalidImage)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, fmt.Errorf("%w: detected %s", ErrInvalidImage, mt.String())
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, fmt.Errorf("%w: zero dimensions", ErrInvalidImage)
	}

	return Image{
		Data:     data,
		MIMEType: mt.String(),
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
