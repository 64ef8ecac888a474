package capture

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/kozaktomas/face-auth/internal/constants"
)

// DecodeDataURL converts a base64 image data URL into a File.
// The resulting file is always named image.webp with MIME type image/webp,
// whatever media type the data URL declares; the payload bytes are kept as-is.
func DecodeDataURL(dataURL string) (*File, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return nil, decodeError("missing payload separator")
	}

	mediaType, ok := strings.CutPrefix(header, "data:")
	if !ok {
		return nil, decodeError("missing data: prefix")
	}

	mediaType, ok = strings.CutSuffix(mediaType, ";base64")
	if !ok {
		return nil, decodeError("payload is not base64 encoded")
	}

	if !strings.HasPrefix(strings.ToLower(mediaType), "image/") {
		return nil, decodeError(fmt.Sprintf("unsupported media type %q", mediaType))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, decodeError("empty payload")
	}

	return &File{
		Name:     constants.CaptureFileName,
		MIMEType: constants.CaptureMIMEType,
		Data:     data,
	}, nil
}

// EncodeDataURL returns the base64 data URL representation of f.
func EncodeDataURL(f *File) string {
	return "data:" + f.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// FromDataURL builds a CapturedImage from a camera screenshot.
// An empty screenshot is reported as a capture error, not a decode error.
func FromDataURL(dataURL string) (*CapturedImage, error) {
	if dataURL == "" {
		return nil, captureError(ErrNoFrame, nil)
	}

	file, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}

	return &CapturedImage{PreviewRef: dataURL, File: file}, nil
}
