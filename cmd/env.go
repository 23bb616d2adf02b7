package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/auth"
	"github.com/abhisek/prava/internal/config"
	"github.com/abhisek/prava/internal/logger"
	"github.com/abhisek/prava/internal/screen"
	"github.com/abhisek/prava/internal/store"
)

// env is everything a command needs to talk to the API: configuration,
// the log, the local store, the restored session and the client.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *store.Store
	session *auth.Store
	client  *api.Service
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	if cfg.Log.File == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return nil, err
		}
		if err := store.EnsureDir(p); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		cfg.Log.File = p
	}
	return cfg, cfg.Validate()
}

// newEnv opens the store, restores the session and builds the client.
// Callers must Close the result.
func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logger())
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	session := auth.NewStore(st.KV(), log)
	if _, err := session.Init(cmd.Context()); err != nil {
		log.Warn("restore session failed", "error", err)
	}

	e := &env{
		cfg:     cfg,
		log:     log,
		store:   st,
		session: session,
		client:  api.New(cfg.API(), session, st.EventRepo(), log),
	}
	log.Debug("environment ready", "api_url", cfg.APIURL, "db", dbPath)
	return e, nil
}

// deps returns the dependencies shared by the TUI screens.
func (e *env) deps() screen.Deps {
	return screen.Deps{
		Client:         e.client,
		Session:        e.session,
		Events:         e.store.EventRepo(),
		Log:            e.log,
		RandomQuizSize: e.cfg.RandomQuizSize,
	}
}

func (e *env) Close() {
	e.store.Close()
	e.log.Sync()
}
