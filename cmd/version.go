package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version and the API it talks to",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "prava", buildVersion())

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "api", cfg.APIURL)
		return nil
	},
}

// buildVersion prefers the ldflags value, then the module version recorded
// by `go install`.
func buildVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}
