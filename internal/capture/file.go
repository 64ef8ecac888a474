package capture

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// LoadFile reads an image from disk. The MIME type is sniffed from the
// content, so a mislabeled extension does not bypass type validation.
func LoadFile(path string) (*CapturedImage, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided file path for upload
	if err != nil {
		return nil, fmt.Errorf("could not read image file: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image file is empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &CapturedImage{
		PreviewRef: (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		File: &File{
			Name:     filepath.Base(path),
			MIMEType: http.DetectContentType(data),
			Data:     data,
		},
	}, nil
}

// Save writes the image file to path with owner-only permissions.
func (c *CapturedImage) Save(path string) error {
	if err := os.WriteFile(path, c.File.Data, 0600); err != nil {
		return fmt.Errorf("could not write image file: %w", err)
	}
	return nil
}
