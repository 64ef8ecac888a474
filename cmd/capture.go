package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/config"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a face image from the camera and save it",
	Long: `Capture a frame from the camera and save it to --out. The file can later be
passed to register or login with --image.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().String("out", "", "Output file path (required)")
	captureCmd.Flags().Bool("inspect", false, "Print the image dimensions after saving")
}

func runCapture(cmd *cobra.Command, args []string) error {
	outPath := mustGetString(cmd, "out")
	if outPath == "" {
		return errors.New("--out is required")
	}

	cfg := config.Load()
	cam := capture.NewFFmpegCamera(cfg.Camera.Device, cfg.Camera.FFmpegPath)
	out := cmd.OutOrStdout()

	img, err := interactiveCapture(cmd.Context(), cmd.InOrStdin(), out, cam)
	if err != nil {
		return err
	}
	if err := img.Save(outPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", outPath)

	if mustGetBool(cmd, "inspect") {
		info, err := capture.Inspect(img.File)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s, %dx%d\n", info.Format, info.Width, info.Height)
	}
	return nil
}
