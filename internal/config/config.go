package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Environment variables read by Load
const (
	EnvAPIKey = "OPENAI_API_KEY"
	EnvModel  = "COUNCIL_MODEL"
	EnvDB     = "COUNCIL_DB"
	EnvLog    = "COUNCIL_LOG"
	EnvDebug  = "COUNCIL_DEBUG"
)

// Config holds runtime settings for the council TUI
type Config struct {
	APIKey  string
	Model   string
	DBPath  string
	LogPath string
	Debug   bool
}

// Load reads envFile (if present) into the process environment and builds a
// Config from it. An empty envFile means ".env" in the working directory.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "load %s", envFile)
	}

	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIKey:  os.Getenv(EnvAPIKey),
		Model:   envOr(EnvModel, openai.GPT3Dot5Turbo),
		DBPath:  envOr(EnvDB, filepath.Join(dataDir, "conversations.db")),
		LogPath: envOr(EnvLog, filepath.Join(dataDir, "council.log")),
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", EnvDebug)
		}
		cfg.Debug = debug
	}
	return cfg, nil
}

// Validate reports missing required settings
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.Errorf("%s environment variable is required", EnvAPIKey)
	}
	if c.Model == "" {
		return errors.New("model name must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("database path must not be empty")
	}
	return nil
}

// EnsureDirs creates the parent directories of the database and log files
func (c *Config) EnsureDirs() error {
	for _, p := range []string{c.DBPath, c.LogPath} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return errors.Wrapf(err, "create directory for %s", p)
		}
	}
	return nil
}

func defaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get user home directory")
	}
	return filepath.Join(homeDir, ".council"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
