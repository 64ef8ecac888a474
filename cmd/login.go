package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-auth/internal/validation"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a password or a face image",
	Long: `Sign in. Give --password to sign in with a password, or --image/--camera
to sign in with a face image. The server accepts exactly one of the two.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password")
	loginCmd.Flags().String("image", "", "Path to a JPEG, PNG or WebP face image")
	loginCmd.Flags().Bool("camera", false, "Capture the face image from the camera")
}

func runLogin(cmd *cobra.Command, args []string) error {
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

	stop := spinner("Signing in")
	res, err := a.service.Login(ctx, validation.LoginInput{
		Email:    mustGetString(cmd, "email"),
		Password: optionalString(cmd, "password"),
		Image:    img,
	})
	stop()
	if err != nil {
		return report(out, err)
	}
	if !res.Accepted() {
		printViolations(out, res.Violations)
		return errRejected
	}

	fmt.Fprintf(out, "Signed in as %s\n", res.Value.Email)
	return nil
}
