package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/prava/internal/devserver"
	"github.com/abhisek/prava/internal/logger"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local fake of the Prava API",
	Long:  "Serves every endpoint the client uses over seeded in-memory content. A demo account (demo / demo1234) is created at start.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		secret, _ := cmd.Flags().GetString("secret")
		ttl, _ := cmd.Flags().GetDuration("access-ttl")
		logFile, _ := cmd.Flags().GetString("log-file")
		if logFile == "" {
			logFile = "stderr"
		}

		log, err := logger.New(logger.Options{Mode: "dev", File: logFile})
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer log.Sync()

		opts := devserver.DefaultOptions()
		opts.Log = log
		if secret != "" {
			opts.Secret = secret
		}
		if ttl > 0 {
			opts.AccessTTL = ttl
		}
		srv, err := devserver.New(opts)
		if err != nil {
			return fmt.Errorf("create dev server: %w", err)
		}

		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			log.Info("dev server listening", "addr", addr, "demo_user", opts.DemoUser)
			errc <- httpSrv.ListenAndServe()
		}()
		fmt.Printf("Prava dev API on http://%s/api (demo / %s)\n", displayAddr(addr), opts.DemoPassword)

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("dev server shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	devserverCmd.Flags().String("addr", ":8000", "Listen address")
	devserverCmd.Flags().String("secret", "", "HS256 signing secret for access tokens")
	devserverCmd.Flags().Duration("access-ttl", 0, "Access token lifetime (default 15m)")
}
