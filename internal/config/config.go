// ABOUTME: Configuration loading for the audit tool and server.
// ABOUTME: TOML file at ~/.pqcaudit/config.toml with PQCAUDIT_* env overrides.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/arcqubit/pqcaudit/internal/types"
)

// Config is the complete tool configuration.
type Config struct {
	// Classification is the default data classification assessed against.
	Classification string `toml:"classification"`

	// ReportDir is where generated reports are written.
	ReportDir string `toml:"report_dir"`

	// HistoryPath is the scan history database location.
	HistoryPath string `toml:"history_path"`

	// ExcludeDirs are directory names skipped during scans, in addition to
	// the built-in dependency directories.
	ExcludeDirs []string `toml:"exclude_dirs"`

	// KeepClone keeps cloned repositories on disk after scanning.
	KeepClone bool `toml:"keep_clone"`

	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type LogConfig struct {
	// Level is a logrus level name: debug, info, warn, error.
	Level string `toml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format"`
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".pqcaudit"), nil
}

// Path returns the configuration file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Classification: "unclassified",
		ReportDir:      "reports",
		HistoryPath:    "", // resolved relative to the config dir when empty
		Server:         ServerConfig{Port: 8080},
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the config file if present, applies env overrides, and
// validates. A missing file is not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from an explicit file location.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PQCAUDIT_CLASSIFICATION"); v != "" {
		c.Classification = v
	}
	if v := os.Getenv("PQCAUDIT_REPORT_DIR"); v != "" {
		c.ReportDir = v
	}
	if v := os.Getenv("PQCAUDIT_HISTORY_PATH"); v != "" {
		c.HistoryPath = v
	}
	if v := os.Getenv("PQCAUDIT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PQCAUDIT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PQCAUDIT_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

func (c *Config) setDefaults() {
	defaults := Default()
	if c.Classification == "" {
		c.Classification = defaults.Classification
	}
	if c.ReportDir == "" {
		c.ReportDir = defaults.ReportDir
	}
	if c.HistoryPath == "" {
		if dir, err := Dir(); err == nil {
			c.HistoryPath = filepath.Join(dir, "history.db")
		}
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Validate rejects values the rest of the tool cannot act on.
func (c *Config) Validate() error {
	if _, ok := types.ParseClassification(c.Classification); !ok {
		return fmt.Errorf("invalid classification %q, must be one of: unclassified, protected-a, protected-b, protected-c", c.Classification)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be text or json", c.Log.Format)
	}
	return nil
}

// DefaultClassification returns the parsed classification level.
func (c *Config) DefaultClassification() types.Classification {
	classification, _ := types.ParseClassification(c.Classification)
	return classification
}
