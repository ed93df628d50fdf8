package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is stamped at release time with
// -ldflags "-X github.com/abhisek/easypractice/cmd.version=v1.2.3".
var version = ""

// buildVersion returns the stamped version, then the module version
// recorded by `go install`, then "(devel)".
func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the easypractice version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "easypractice %s (%s/%s)\n", buildVersion(), runtime.GOOS, runtime.GOARCH)
	},
}
