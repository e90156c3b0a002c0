// Package config provides configuration management for reelwright.
// Values come from built-in defaults, then an optional TOML file, then
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// Default values
	DefaultPort          = 8797
	DefaultLogLevel      = "info"
	DefaultDataDir       = ".reelwright"
	DefaultRenderTimeout = 30 // seconds
	DefaultFetchTimeout  = 20 // seconds

	// Environment variable names
	EnvConfigFile  = "REELWRIGHT_CONFIG"
	EnvPort        = "REELWRIGHT_PORT"
	EnvLogLevel    = "REELWRIGHT_LOG_LEVEL"
	EnvDataDir     = "REELWRIGHT_DATA_DIR"
	EnvRenderURL   = "REELWRIGHT_RENDER_URL"
	EnvRenderToken = "REELWRIGHT_RENDER_TOKEN"

	// Files under the data directory
	DBFilename     = "reelwright.db"
	LockFilename   = "reelwright.lock"
	ConfigFilename = "config.toml"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	LockPath() string
	ExportDir() string
	RenderURL() string
	RenderToken() string
	RenderTimeout() time.Duration
	FetchTimeout() time.Duration
	File() string
}

// fileConfig mirrors config.toml.
type fileConfig struct {
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
	DataDir  string `toml:"data_dir"`

	Render struct {
		URL            string `toml:"url"`
		Token          string `toml:"token"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"render"`

	Article struct {
		TimeoutSeconds int `toml:"timeout_seconds"`
	} `toml:"article"`
}

// EnvConfig is the resolved configuration.
type EnvConfig struct {
	port          int
	logLevel      string
	dataDir       string
	renderURL     string
	renderToken   string
	renderTimeout time.Duration
	fetchTimeout  time.Duration
	file          string
}

// New resolves configuration. path names a TOML file; when empty,
// REELWRIGHT_CONFIG is consulted, then config.toml in the default data
// directory. Only the last of these may be missing.
func New(path string) (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:          DefaultPort,
		logLevel:      DefaultLogLevel,
		dataDir:       defaultDataDir(),
		renderTimeout: DefaultRenderTimeout * time.Second,
		fetchTimeout:  DefaultFetchTimeout * time.Second,
	}

	required := true
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		path = filepath.Join(cfg.dataDir, ConfigFilename)
		required = false
	}

	if err := cfg.loadFile(path, required); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EnvConfig) loadFile(path string, required bool) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var fc fileConfig
	if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.file = path

	if fc.Port != 0 {
		if err := validatePort(fc.Port); err != nil {
			return fmt.Errorf("invalid port in %s: %w", path, err)
		}
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		dir, err := expandHome(fc.DataDir)
		if err != nil {
			return err
		}
		c.dataDir = dir
	}
	c.renderURL = fc.Render.URL
	c.renderToken = fc.Render.Token
	if fc.Render.TimeoutSeconds > 0 {
		c.renderTimeout = time.Duration(fc.Render.TimeoutSeconds) * time.Second
	}
	if fc.Article.TimeoutSeconds > 0 {
		c.fetchTimeout = time.Duration(fc.Article.TimeoutSeconds) * time.Second
	}
	return nil
}

func (c *EnvConfig) applyEnv() error {
	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if err := validatePort(port); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		dir, err := expandHome(dd)
		if err != nil {
			return err
		}
		c.dataDir = dir
	}

	if u := os.Getenv(EnvRenderURL); u != "" {
		c.renderURL = u
	}
	if tok := os.Getenv(EnvRenderToken); tok != "" {
		c.renderToken = tok
	}
	return nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// LockPath is held by a running server.
func (c *EnvConfig) LockPath() string {
	return filepath.Join(c.dataDir, LockFilename)
}

// ExportDir is where exports land when a request names no directory.
func (c *EnvConfig) ExportDir() string {
	return filepath.Join(c.dataDir, "exports")
}

// RenderURL is the render engine base URL. Empty means use the stub.
func (c *EnvConfig) RenderURL() string {
	return c.renderURL
}

func (c *EnvConfig) RenderToken() string {
	return c.renderToken
}

func (c *EnvConfig) RenderTimeout() time.Duration {
	return c.renderTimeout
}

func (c *EnvConfig) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

// File is the config file that was loaded, or empty.
func (c *EnvConfig) File() string {
	return c.file
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
