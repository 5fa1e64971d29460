package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".formscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .formscan configuration file.
// Everything in it is optional; values present here are applied before
// CLI flags, so flags still win.
type File struct {
	// Endpoint is the service base URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Timeout is the per-request timeout (Go duration string, e.g. "90s").
	Timeout string `yaml:"timeout,omitempty"`

	// PollInterval is the training status poll interval.
	PollInterval string `yaml:"pollInterval,omitempty"`

	// PollTimeout bounds the total wait for training completion.
	PollTimeout string `yaml:"pollTimeout,omitempty"`

	// BatchSize is the number of concurrent analyze uploads.
	BatchSize int `yaml:"batchSize,omitempty"`

	// MaxUploadSize caps the size in bytes of documents accepted for
	// analysis.
	MaxUploadSize int64 `yaml:"maxUploadSize,omitempty"`

	// DBDir overrides the history database directory.
	DBDir string `yaml:"dbDir,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// LoadConfigFile loads a .formscan yaml file.
// If the file does not exist, it returns ErrConfigNotFound; callers
// decide whether that matters based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies the file's non-empty values onto cfg.
// Duration fields are parsed; a malformed duration is an error rather
// than a silent fallback.
func (f *File) Apply(cfg *Config) error {
	if f.Endpoint != "" {
		cfg.Endpoint = f.Endpoint
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		cfg.Timeout = d
	}
	if f.PollInterval != "" {
		d, err := time.ParseDuration(f.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid pollInterval in config file: %w", err)
		}
		cfg.PollInterval = d
	}
	if f.PollTimeout != "" {
		d, err := time.ParseDuration(f.PollTimeout)
		if err != nil {
			return fmt.Errorf("invalid pollTimeout in config file: %w", err)
		}
		cfg.PollTimeout = d
	}
	if f.BatchSize != 0 {
		cfg.BatchSize = f.BatchSize
	}
	if f.MaxUploadSize != 0 {
		cfg.MaxUploadSize = f.MaxUploadSize
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .formscan in the current directory
// 3. Look for .formscan in the XDG config directory
// 4. Look for .formscan in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
