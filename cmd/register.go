package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-auth/internal/validation"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account with a password and a face image",
	Long: `Create an account. The face image is read from --image or captured from
the camera with --camera. Input is validated locally before anything is sent.`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("password", "", "Password")
	registerCmd.Flags().String("confirm-password", "", "Password confirmation")
	registerCmd.Flags().String("image", "", "Path to a JPEG, PNG or WebP face image")
	registerCmd.Flags().Bool("camera", false, "Capture the face image from the camera")
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	img, err := acquireImage(ctx, cmd.InOrStdin(), out, a.camera, mustGetString(cmd, "image"), mustGetBool(cmd, "camera"))
	if err != nil {
		return err
	}

	stop := spinner("Creating account")
	res, err := a.service.Register(ctx, validation.RegistrationInput{
		Email:           mustGetString(cmd, "email"),
		Password:        mustGetString(cmd, "password"),
		ConfirmPassword: mustGetString(cmd, "confirm-password"),
		Image:           img,
	})
	stop()
	if err != nil {
		return report(out, err)
	}
	if !res.Accepted() {
		printViolations(out, res.Violations)
		return errRejected
	}

	fmt.Fprintf(out, "Registered and signed in as %s\n", res.Value.Email)
	return nil
}
