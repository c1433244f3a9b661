// Package config resolves where the client keeps its files and which
// API it talks to.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devhell/todo/internal/api"
	"github.com/devhell/todo/internal/store/jsonstore"
)

const (
	// AppName is the configuration directory name.
	AppName = "todo"

	// DefaultAPIURL is the remote todo service.
	DefaultAPIURL = api.DefaultBaseURL

	// CredentialsFile holds the persisted session token.
	CredentialsFile = "credentials.json"

	// ConfigFile holds optional user settings.
	ConfigFile = "config.json"

	// LogFile receives diagnostic logs.
	LogFile = "todo.log"
)

// Environment variables read by Load.
const (
	EnvConfigDir = "TODO_CONFIG_DIR"
	EnvAPIURL    = "TODO_API_URL"
	EnvTimeout   = "TODO_TIMEOUT"
	EnvTheme     = "TODO_THEME"
)

// Config holds resolved settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base URL of the todo API, without trailing slash.
	APIURL string

	// Timeout bounds each HTTP call. Zero means no timeout.
	Timeout time.Duration

	// Theme selects CLI colors: classic, neon or mono.
	Theme string

	// Debug enables debug logging.
	Debug bool
}

// fileConfig is the on-disk shape of config.json.
type fileConfig struct {
	APIURL  string `json:"api_url"`
	Timeout string `json:"timeout"`
	Theme   string `json:"theme"`
}

// Load resolves the configuration. Precedence is env > config file > default;
// flags are applied by the caller afterwards.
// If dir is empty, TODO_CONFIG_DIR or the XDG default is used.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:    dir,
		APIURL: DefaultAPIURL,
		Theme:  "classic",
	}

	var fc fileConfig
	if _, err := jsonstore.Load(cfg.ConfigPath(), &fc); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.apply(fc.APIURL, fc.Timeout, fc.Theme); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFile, err)
	}
	if err := cfg.apply(os.Getenv(EnvAPIURL), os.Getenv(EnvTimeout), os.Getenv(EnvTheme)); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	return cfg, nil
}

func (c *Config) apply(apiURL, timeout, theme string) error {
	if s := strings.TrimSpace(apiURL); s != "" {
		c.APIURL = strings.TrimRight(s, "/")
	}
	if s := strings.TrimSpace(timeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", s, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid timeout %q: negative", s)
		}
		c.Timeout = d
	}
	if s := strings.TrimSpace(theme); s != "" {
		c.Theme = s
	}
	return nil
}

// Override applies flag values; empty or zero values leave settings alone.
func (c *Config) Override(apiURL string, timeout time.Duration, theme string) {
	if s := strings.TrimSpace(apiURL); s != "" {
		c.APIURL = strings.TrimRight(s, "/")
	}
	if timeout > 0 {
		c.Timeout = timeout
	}
	if s := strings.TrimSpace(theme); s != "" {
		c.Theme = s
	}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return "." + AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// CredentialsPath returns the path to the stored session token.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// ConfigPath returns the path to config.json.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// LogPath returns the path to the diagnostic log.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}
