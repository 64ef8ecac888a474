package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/kozaktomas/face-auth/internal/constants"
)

// Camera is a capture device that can be opened for exclusive use.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open camera. Screenshot returns a data URL, or an empty string
// when the device delivered no frame. Stop releases the device.
type Stream interface {
	Screenshot(ctx context.Context) (string, error)
	Stop() error
}

// FFmpegCamera grabs still frames from a V4L2 device through ffmpeg.
type FFmpegCamera struct {
	Device string
	Binary string
}

// NewFFmpegCamera creates a camera for the given device and ffmpeg binary.
func NewFFmpegCamera(device, binary string) *FFmpegCamera {
	if device == "" {
		device = constants.DefaultCameraDevice
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegCamera{Device: device, Binary: binary}
}

// Open resolves the ffmpeg binary and takes a handle on the device, which is
// held until Stop.
func (c *FFmpegCamera) Open(_ context.Context) (Stream, error) {
	bin, err := exec.LookPath(c.Binary)
	if err != nil {
		return nil, captureError(ErrDeviceUnavailable, fmt.Errorf("ffmpeg not found: %w", err))
	}

	handle, err := os.Open(c.Device)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, captureError(ErrPermissionDenied, err)
		}
		return nil, captureError(ErrDeviceUnavailable, err)
	}

	return &ffmpegStream{device: c.Device, binary: bin, handle: handle}, nil
}

type ffmpegStream struct {
	mu     sync.Mutex
	device string
	binary string
	handle *os.File
}

func (s *ffmpegStream) Screenshot(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return "", captureError(ErrDeviceUnavailable, errors.New("stream stopped"))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary, //nolint:gosec // binary resolved via LookPath, device from config
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2", "-i", s.device,
		"-frames:v", "1",
		"-c:v", "libwebp", "-f", "webp", "-",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "Permission denied") {
			return "", captureError(ErrPermissionDenied, errors.New(msg))
		}
		return "", captureError(ErrDeviceUnavailable, fmt.Errorf("ffmpeg: %w: %s", err, msg))
	}

	if stdout.Len() == 0 {
		return "", nil
	}

	return EncodeDataURL(&File{MIMEType: constants.CaptureMIMEType, Data: stdout.Bytes()}), nil
}

func (s *ffmpegStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	if err != nil {
		return fmt.Errorf("releasing camera %s: %w", s.device, err)
	}
	return nil
}
