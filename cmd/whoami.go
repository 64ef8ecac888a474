package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-auth/internal/auth"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the signed-in user as reported by the API. With --refresh the cached
result is dropped first.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)

	whoamiCmd.Flags().Bool("refresh", false, "Ignore cached results")
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if mustGetBool(cmd, "refresh") {
		a.client.InvalidateMe()
	}

	stop := spinner("Loading profile")
	user, err := a.service.Me(ctx)
	stop()
	if errors.Is(err, auth.ErrNotSignedIn) {
		fmt.Fprintln(out, "Not signed in")
		return err
	}
	if err != nil {
		return report(out, err)
	}

	fmt.Fprintf(out, "ID:    %s\n", user.ID)
	fmt.Fprintf(out, "Email: %s\n", user.Email)
	return nil
}
