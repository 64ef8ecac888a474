package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/kozaktomas/face-auth/internal/api"
	"github.com/kozaktomas/face-auth/internal/validation"
)

// errRejected is returned after violations have been printed, so the
// process still exits non-zero.
var errRejected = errors.New("input was rejected")

// printViolations writes one line per violation. Form-level violations have
// no path.
func printViolations(w io.Writer, violations []validation.Violation) {
	fmt.Fprintln(w, "Please fix the following:")
	for _, v := range violations {
		if v.Path == "" {
			fmt.Fprintf(w, "  %s\n", v.Message)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", v.Path, v.Message)
	}
}

// printNotFound is the dedicated view for 404 responses.
func printNotFound(w io.Writer) {
	fmt.Fprintln(w, "Not found")
	fmt.Fprintln(w, "  The requested resource does not exist. Check API_URL and try again.")
}

// report routes err to the view it belongs to and returns the error the
// command should exit with.
func report(w io.Writer, err error) error {
	if errors.Is(err, api.ErrNotFound) {
		printNotFound(w)
		return err
	}
	if apiErr, ok := api.AsAPIError(err); ok && apiErr.HasViolations() {
		printViolations(w, apiErr.Violations())
		return errRejected
	}
	return err
}

// spinner shows a pending indicator on stderr until the returned func is called.
func spinner(description string) func() {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
		bar.Finish()
	}
}
