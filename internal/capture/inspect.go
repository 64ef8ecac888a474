package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageInfo describes the header of an encoded image.
type ImageInfo struct {
	Width  int
	Height int
	Format string // "jpeg", "png" or "webp"
}

// Inspect decodes only the image header to learn its dimensions and format.
func Inspect(f *File) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
