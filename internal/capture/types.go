// Package capture turns camera frames and files on disk into image files
// ready for validation and upload.
package capture

// File is an in-memory binary image with its MIME type.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Size returns the file length in bytes.
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// CapturedImage pairs a displayable reference with the binary file.
// A new capture replaces the previous value; it is never modified in place.
type CapturedImage struct {
	PreviewRef string // data URL for camera frames, file:// URL for files on disk
	File       *File
}
