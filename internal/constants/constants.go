// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Capture constants
const (
	// CaptureMIMEType is the MIME type assigned to every camera frame,
	// independent of the codec the device negotiated
	CaptureMIMEType = "image/webp"

	// CaptureFileName is the placeholder file name for camera frames
	CaptureFileName = "image.webp"

	// DefaultCameraDevice is the capture device used when CAMERA_DEVICE is unset
	DefaultCameraDevice = "/dev/video0"
)

// Image constraints
const (
	// MaxImageSizeMB is the largest accepted image file in megabytes
	MaxImageSizeMB = 5

	// MinImageWidth and MinImageHeight are the smallest resolution accepted
	// when image inspection is enabled
	MinImageWidth  = 100
	MinImageHeight = 100

	// MaxImageWidth and MaxImageHeight are the largest resolution accepted
	// when image inspection is enabled
	MaxImageWidth  = 4096
	MaxImageHeight = 4096
)

// AllowedImageTypes lists the MIME types accepted for profile images.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Password constants
const (
	// MinPasswordLength is the minimum registration password length
	MinPasswordLength = 8
)

// Form field paths, shared by client-side validation and server error projection
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldImage           = "imageData"
	FieldRefreshToken    = "refreshToken"
)

// Session constants
const (
	// SessionKey is the storage key credentials are persisted under
	SessionKey = "user-storage"

	// SessionStateVersion is written alongside persisted credentials
	SessionStateVersion = 0
)

// Transport constants
const (
	// DefaultAPIURL is the API origin used when API_URL is unset
	DefaultAPIURL = "http://localhost:8000"

	// DefaultRequestTimeout bounds a single API request
	DefaultRequestTimeout = 30 * time.Second

	// DefaultQueryCacheTTL is how long a cached read stays fresh
	DefaultQueryCacheTTL = time.Minute

	// ReadRetryAttempts is the number of retries for idempotent reads on network failure
	ReadRetryAttempts = 3

	// ReadRetryBase is the first backoff interval for read retries
	ReadRetryBase = 200 * time.Millisecond
)

// Development server constants
const (
	// DefaultMockPort is the port the development API server listens on
	DefaultMockPort = 8000

	// MaxUploadSize is the maximum multipart body the development server accepts (10MB)
	MaxUploadSize = 10 << 20

	// DefaultAccessTokenTTL is the lifetime of issued access tokens
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the lifetime of issued refresh tokens
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)
