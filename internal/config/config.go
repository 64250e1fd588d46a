// Package config resolves daemon options from defaults, an optional YAML
// file, a .env file and TABPUTZ_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/lotas/tabputz/internal/applog"
	"gopkg.in/yaml.v3"
)

const (
	BackendExtension = "extension"
	BackendChromium  = "chromium"
	BackendFirefox   = "firefox"

	UIExtension = "extension"
	UITUI       = "tui"
	UILog       = "log"

	DefaultPort = 19191
)

// Config holds every daemon option.
type Config struct {
	Backend   string `yaml:"backend"`
	UI        string `yaml:"ui"`
	Port      int    `yaml:"port"`
	CDPURL    string `yaml:"cdp_url"`
	Profile   string `yaml:"profile"`
	DBPath    string `yaml:"db_path"`
	LogDir    string `yaml:"log_dir"`
	LogLevel  string `yaml:"log_level"`
	Namespace string `yaml:"namespace"`
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "tabputz")
}

// DefaultPath is where the YAML file is looked up when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tabputz", "config.yaml")
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Backend:   BackendExtension,
		Port:      DefaultPort,
		CDPURL:    "http://127.0.0.1:9222",
		DBPath:    filepath.Join(dataDir(), "tabputz.db"),
		LogDir:    dataDir(),
		LogLevel:  "info",
		Namespace: "sync",
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current value.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration. An empty path means DefaultPath, which may
// be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		err := LoadFile(cfg, path)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		applog.Debug("config.dotenv", "error", err.Error())
	}
	cfg.applyEnv()

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills derived options and validates the result. Call it again
// after overriding fields, for example from command-line flags.
func (c *Config) Normalize() error {
	c.applyDefaults()
	return c.Validate()
}

func (c *Config) applyEnv() {
	c.Backend = getEnvOrDefault("TABPUTZ_BACKEND", c.Backend)
	c.UI = getEnvOrDefault("TABPUTZ_UI", c.UI)
	c.Port = getEnvIntOrDefault("TABPUTZ_PORT", c.Port)
	c.CDPURL = getEnvOrDefault("TABPUTZ_CDP_URL", c.CDPURL)
	c.Profile = getEnvOrDefault("TABPUTZ_PROFILE", c.Profile)
	c.DBPath = getEnvOrDefault("TABPUTZ_DB_PATH", c.DBPath)
	c.LogDir = getEnvOrDefault("TABPUTZ_LOG_DIR", c.LogDir)
	c.LogLevel = getEnvOrDefault("TABPUTZ_LOG_LEVEL", c.LogLevel)
	c.Namespace = getEnvOrDefault("TABPUTZ_NAMESPACE", c.Namespace)
}

// applyDefaults fills options that depend on others.
func (c *Config) applyDefaults() {
	if c.UI == "" {
		if c.Backend == BackendExtension {
			c.UI = UIExtension
		} else {
			c.UI = UITUI
		}
	}
	if c.Namespace == "" {
		c.Namespace = "sync"
	}
}

// Validate rejects unknown backends and UIs and impossible combinations.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendExtension, BackendChromium, BackendFirefox:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.UI {
	case UIExtension:
		if c.Backend != BackendExtension {
			return fmt.Errorf("ui %q needs the extension backend", c.UI)
		}
	case UITUI, UILog:
	default:
		return fmt.Errorf("unknown ui %q", c.UI)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
