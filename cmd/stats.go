package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		localOnly, _ := cmd.Flags().GetBool("local")

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		ctx := cmd.Context()

		if !localOnly {
			if _, err := e.session.Require(); err != nil {
				fmt.Println("Not signed in; showing local history only.")
			} else {
				s, err := e.client.Summary(ctx)
				if err != nil {
					return errors.New(api.UserMessage(err))
				}
				fmt.Printf("XP: %d    Streak: %d days\n", s.XP, s.Streak)
				fmt.Printf("Lessons: %d completed, %d in progress\n", s.LessonsCompleted, s.LessonsInProgress)
				fmt.Printf("Quizzes: %d taken, %.0f%% average\n\n", s.QuizAttempts, s.AverageScore)
			}
		}

		events := e.store.EventRepo()
		attempts, err := events.RecentAttempts(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("load attempts: %w", err)
		}
		if len(attempts) == 0 {
			fmt.Println("No quizzes recorded on this device yet.")
		} else {
			fmt.Printf("%-17s  %-7s  %-30s  %6s  %s\n", "When", "Mode", "Quiz", "Score", "Correct")
			fmt.Println(strings.Repeat("─", 80))
			for _, a := range attempts {
				title := a.Title
				if title == "" {
					title = "Random quiz"
				}
				if len(title) > 30 {
					title = title[:27] + "..."
				}
				fmt.Printf("%-17s  %-7s  %-30s  %5.0f%%  %d/%d\n",
					a.Timestamp.Local().Format("2006-01-02 15:04"), a.Mode, title, a.Score, a.Correct, a.Total)
			}
			fmt.Printf("\n%d attempts\n", len(attempts))
		}

		reqs, err := events.RequestStats(ctx, store.QueryOpts{From: time.Now().Add(-24 * time.Hour)})
		if err != nil {
			return fmt.Errorf("load request stats: %w", err)
		}
		fmt.Printf("API requests in the last 24h: %d (%d failed)\n", reqs.Total, reqs.Failed)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 20, "Number of local attempts to show")
	statsCmd.Flags().Bool("local", false, "Skip the server summary")
}
