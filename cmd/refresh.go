package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		stop := spinner("Refreshing token")
		creds, err := a.service.Refresh(ctx)
		stop()
		if err != nil {
			return report(out, err)
		}

		if exp, ok := creds.AccessTokenExpiry(); ok {
			fmt.Fprintf(out, "Access token refreshed, valid until %s\n", exp.Local().Format("2006-01-02 15:04:05"))
			return nil
		}
		fmt.Fprintln(out, "Access token refreshed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
