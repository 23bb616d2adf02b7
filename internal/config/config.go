// Package config loads client settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/logger"
)

// Config is the full client configuration.
type Config struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
	DBPath  string        `yaml:"db"`

	Log   LogConfig   `yaml:"log"`
	Retry RetryConfig `yaml:"retry"`

	// RandomQuizSize is the ?size= sent to /quiz/random/.
	RandomQuizSize int `yaml:"random_quiz_size"`
}

type LogConfig struct {
	File    string `yaml:"file"`
	Mode    string `yaml:"mode"`
	HashIDs bool   `yaml:"hash_ids"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns the built-in settings. DBPath and Log.File are left
// empty and resolved to XDG locations by the caller.
func DefaultConfig() *Config {
	def := api.DefaultConfig()
	return &Config{
		APIURL:  def.BaseURL,
		Timeout: def.Timeout,
		Log:     LogConfig{Mode: "dev"},
		Retry: RetryConfig{
			MaxAttempts: def.Retry.MaxAttempts,
			InitialWait: def.Retry.InitialWait,
			MaxWait:     def.Retry.MaxWait,
			Multiplier:  def.Retry.Multiplier,
		},
		RandomQuizSize: 10,
	}
}

// Load reads the YAML file at path over the defaults, applies PRAVA_*
// environment overrides and validates the result. An empty path means the
// default location, which may be absent. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/prava/config.yaml.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv("PRAVA_CONFIG")); p != "" {
		return p, nil
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "prava", "config.yaml"), nil
}

// DefaultLogPath returns $XDG_STATE_HOME/prava/prava.log.
func DefaultLogPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "prava", "prava.log"), nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PRAVA_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PRAVA_DB")); v != "" {
		c.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("PRAVA_LOG_FILE")); v != "" {
		c.Log.File = v
	}
	if v := strings.TrimSpace(os.Getenv("PRAVA_LOG_MODE")); v != "" {
		c.Log.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv("PRAVA_LOG_HASH_IDS")); v != "" {
		c.Log.HashIDs = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv("PRAVA_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PRAVA_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv("PRAVA_RANDOM_QUIZ_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PRAVA_RANDOM_QUIZ_SIZE: %w", err)
		}
		c.RandomQuizSize = n
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q must be an absolute URL", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url scheme %q not supported", u.Scheme)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.RandomQuizSize < 1 || c.RandomQuizSize > 100 {
		return fmt.Errorf("random_quiz_size %d out of range [1, 100]", c.RandomQuizSize)
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be at least 1")
	}
	if c.Retry.Multiplier < 1 {
		return errors.New("retry.multiplier must be >= 1")
	}
	switch strings.ToLower(c.Log.Mode) {
	case "", "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("log.mode %q must be dev or prod", c.Log.Mode)
	}
	return nil
}

// API converts the configuration into api client settings.
func (c *Config) API() api.Config {
	out := api.DefaultConfig()
	out.BaseURL = c.APIURL
	out.Timeout = c.Timeout
	out.Retry = api.RetryConfig{
		MaxAttempts: c.Retry.MaxAttempts,
		InitialWait: c.Retry.InitialWait,
		MaxWait:     c.Retry.MaxWait,
		Multiplier:  c.Retry.Multiplier,
	}
	return out
}

// Logger converts the configuration into logger options.
func (c *Config) Logger() logger.Options {
	return logger.Options{Mode: c.Log.Mode, File: c.Log.File, HashIDs: c.Log.HashIDs}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
