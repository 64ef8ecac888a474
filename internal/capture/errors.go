package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when a captured frame or image cannot be decoded.
	ErrDecode = errors.New("could not decode image data")

	// ErrCapture is the class of all failures to obtain a frame from the camera.
	// It is always joined with one of the kinds below.
	ErrCapture = errors.New("capture failed")

	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrDeviceUnavailable = errors.New("camera unavailable")
	ErrNoFrame           = errors.New("camera produced no frame")

	// ErrCanceled is returned when the user dismisses the capture dialog.
	ErrCanceled = errors.New("capture canceled")
)

// captureError builds an error matching both ErrCapture and kind.
func captureError(kind, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %w", ErrCapture, kind)
	}
	return fmt.Errorf("%w: %w: %w", ErrCapture, kind, cause)
}

func decodeError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDecode, reason)
}

// IsRetryable reports whether the user can reasonably retry after err.
// Every capture and decode failure is retryable; cancellation is not.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrCanceled) {
		return false
	}
	return errors.Is(err, ErrCapture) || errors.Is(err, ErrDecode)
}
