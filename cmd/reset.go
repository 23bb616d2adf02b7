package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete local data (session, quiz history, request log)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dbPath, err := resolveDBPath(cmd, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		if !yes {
			fmt.Printf("This deletes %s. Run again with --yes to confirm.\n", dbPath)
			return nil
		}

		removed := 0
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			err := os.Remove(p)
			switch {
			case err == nil:
				removed++
			case errors.Is(err, os.ErrNotExist):
			default:
				return fmt.Errorf("remove %s: %w", p, err)
			}
		}
		if removed == 0 {
			fmt.Println("Nothing to delete.")
			return nil
		}
		fmt.Println("Local data deleted. Server-side progress is unchanged.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}

