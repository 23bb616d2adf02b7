package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/prava/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive app (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	runCmd.Flags().Bool("skip-welcome", false, "Skip the welcome animation")
}

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	skip, _ := cmd.Flags().GetBool("skip-welcome")
	e.log.Info("starting app", "version", version, "signed_in", e.session.Session().IsAuthenticated)
	return app.Run(app.Options{
		Deps:        e.deps(),
		SkipWelcome: skip,
	})
}
