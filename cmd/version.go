package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata variables, set by -ldflags at compile time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

type buildMeta struct {
	version string
	commit  string
	date    string
}

// resolveBuildMeta fills values not set through -ldflags from the module
// build info embedded by `go install` and `go build`.
func resolveBuildMeta(read func() (*debug.BuildInfo, bool)) buildMeta {
	m := buildMeta{version: Version, commit: CommitSHA, date: BuildDate}
	info, ok := read()
	if !ok || info == nil {
		return m
	}
	if m.version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		m.version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && m.commit == "unknown":
			m.commit = s.Value
		case s.Key == "vcs.time" && m.date == "unknown":
			m.date = s.Value
		}
	}
	return m
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		m := resolveBuildMeta(debug.ReadBuildInfo)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "face-auth %s\n", m.version)
		fmt.Fprintf(out, "  Commit: %s\n", m.commit)
		fmt.Fprintf(out, "  Built:  %s\n", m.date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
