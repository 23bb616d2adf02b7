package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/prava/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "prava",
	Short: "Learn English in your terminal",
	Long:  "Prava is a terminal client for the Prava English-learning service: lessons, flashcards and quizzes for Romanian speakers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/prava/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides PRAVA_DB env var)")
	pf.String("api-url", "", "Base URL of the Prava API (overrides PRAVA_API_URL env var)")
	pf.String("log-file", "", "Path to log file, or - for stderr (overrides PRAVA_LOG_FILE env var)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file and PRAVA_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
