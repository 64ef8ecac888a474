package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kozaktomas/face-auth/internal/capture"
)

// acquireImage reads the image from path, or from the camera when useCamera
// is set. It returns nil when neither is requested.
func acquireImage(ctx context.Context, in io.Reader, out io.Writer, cam capture.Camera, path string, useCamera bool) (*capture.File, error) {
	switch {
	case path != "" && useCamera:
		return nil, errors.New("use either --image or --camera, not both")
	case path != "":
		img, err := capture.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return img.File, nil
	case useCamera:
		img, err := interactiveCapture(ctx, in, out, cam)
		if err != nil {
			return nil, err
		}
		return img.File, nil
	}
	return nil, nil
}

// interactiveCapture holds the camera while the user takes frames until one
// is accepted or the capture is cancelled. The camera is released on return.
func interactiveCapture(ctx context.Context, in io.Reader, out io.Writer, cam capture.Camera) (*capture.CapturedImage, error) {
	answers := bufio.NewReader(in)

	return capture.WithDialog(ctx, cam, func(d *capture.Dialog) (*capture.CapturedImage, error) {
		for {
			img, err := d.Capture(ctx)
			if err != nil {
				if !capture.IsRetryable(err) {
					return nil, err
				}
				fmt.Fprintf(out, "Capture failed: %v\n", err)
				switch prompt(answers, out, "[r]etry or [c]ancel? ") {
				case "r", "retry", "":
					continue
				default:
					return nil, capture.ErrCanceled
				}
			}

			fmt.Fprintf(out, "Captured %s frame (%.1f KB)\n", img.File.MIMEType, float64(img.File.Size())/1024)
			switch prompt(answers, out, "[u]se, [r]etake or [c]ancel? ") {
			case "u", "use", "":
				return img, nil
			case "r", "retake":
				continue
			default:
				return nil, capture.ErrCanceled
			}
		}
	})
}

// prompt reads one lower-cased answer. End of input counts as cancel.
func prompt(r *bufio.Reader, out io.Writer, question string) string {
	fmt.Fprint(out, question)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "c"
	}
	return strings.ToLower(strings.TrimSpace(line))
}
