package capture

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
)

var errDialogClosed = errors.New("capture dialog closed")

// Dialog holds a camera stream for the duration of one capture interaction.
// It must be closed on every exit path; WithDialog does that for callers.
type Dialog struct {
	mu     sync.Mutex
	stream Stream
	closed bool
}

// OpenDialog acquires the camera.
func OpenDialog(ctx context.Context, cam Camera) (*Dialog, error) {
	stream, err := cam.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrCapture) {
			return nil, err
		}
		return nil, captureError(ErrDeviceUnavailable, err)
	}
	return &Dialog{stream: stream}, nil
}

// Capture takes one frame. On failure the dialog stays open so the caller
// can retry.
func (d *Dialog) Capture(ctx context.Context) (*CapturedImage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, captureError(ErrDeviceUnavailable, errDialogClosed)
	}

	dataURL, err := d.stream.Screenshot(ctx)
	if err != nil {
		if errors.Is(err, ErrCapture) {
			return nil, err
		}
		return nil, captureError(ErrDeviceUnavailable, err)
	}

	return FromDataURL(dataURL)
}

// Close stops the stream. Calling it more than once is a no-op.
func (d *Dialog) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.stream.Stop()
}

// WithDialog opens a dialog, runs fn and releases the camera afterwards,
// including when fn fails or panics. A release failure is reported together
// with fn's error and discards the image.
func WithDialog(ctx context.Context, cam Camera, fn func(*Dialog) (*CapturedImage, error)) (img *CapturedImage, err error) {
	d, err := OpenDialog(ctx, cam)
	if err != nil {
		return nil, err
	}

	defer func() {
		err = multierr.Append(err, d.Close())
		if err != nil {
			img = nil
		}
	}()

	return fn(d)
}
