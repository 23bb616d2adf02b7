package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		in := bufio.NewReader(os.Stdin)
		if username == "" {
			fmt.Print("Username: ")
			line, err := in.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read username: %w", err)
			}
			username = strings.TrimSpace(line)
		}
		if password == "" {
			p, err := readPassword(in)
			if err != nil {
				return err
			}
			password = p
		}
		if username == "" || password == "" {
			return errors.New("username and password are required")
		}

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		sess, err := auth.Login(cmd.Context(), e.client, e.session, username, password)
		if err != nil {
			return errors.New(api.UserMessage(err))
		}
		name := username
		if sess.User != nil && sess.User.Username != "" {
			name = sess.User.Username
		}
		fmt.Printf("Signed in as %s.\n", name)
		return nil
	},
}

// readPassword prompts without echo on a terminal and falls back to a
// plain line read when stdin is piped.
func readPassword(in *bufio.Reader) (string, error) {
	fmt.Print("Password: ")
	fd := os.Stdin.Fd()
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.session.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if _, err := e.session.Require(); err != nil {
			fmt.Println("Not signed in. Run: prava login")
			return nil
		}

		user, err := e.client.Me(cmd.Context())
		if api.IsUnauthorized(err) {
			if rerr := e.session.Refresh(cmd.Context(), e.client); rerr == nil {
				user, err = e.client.Me(cmd.Context())
			}
		}
		if err != nil {
			return errors.New(api.UserMessage(err))
		}
		if err := e.session.SetUser(cmd.Context(), user); err != nil {
			e.log.Warn("store profile failed", "error", err)
		}

		fmt.Printf("%s <%s>\n", user.Username, user.Email)
		fmt.Printf("Level %d, %d XP, %d day streak\n", user.Level, user.XP, user.Streak)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("username", "", "Account username")
	loginCmd.Flags().String("password", "", "Account password (prompted when omitted)")
}
