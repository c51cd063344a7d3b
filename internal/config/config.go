package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/deskctl/internal/oem"
	"github.com/1broseidon/deskctl/internal/platform"
	"gopkg.in/yaml.v3"
)

// Spacing is a grid cell size in pixels.
type Spacing struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LoggingConfig configures the action log.
type LoggingConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: ~/.local/share/deskctl/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

type Config struct {
	Backend        string        `yaml:"backend"`
	Display        string        `yaml:"display,omitempty"`
	XAuthority     string        `yaml:"xauthority,omitempty"`
	HostTimeout    time.Duration `yaml:"host_timeout"`
	CodePage       string        `yaml:"codepage"`
	LogLevel       string        `yaml:"log_level"`
	DefaultSpacing Spacing       `yaml:"default_spacing"`
	Fixture        string        `yaml:"fixture,omitempty"`
	SaveFixture    bool          `yaml:"save_fixture,omitempty"`
	Logging        LoggingConfig `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend:        string(platform.BackendAuto),
		HostTimeout:    5 * time.Second,
		CodePage:       "cp437",
		LogLevel:       "info",
		DefaultSpacing: Spacing{Width: 96, Height: 96},
	}
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/deskctl/actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// SurfaceOptions maps the config onto backend selection.
func (c *Config) SurfaceOptions() platform.Options {
	backend, _ := platform.ParseBackend(c.Backend)
	return platform.Options{
		Backend:     backend,
		Fixture:     expandHome(c.Fixture),
		SaveFixture: c.SaveFixture,
		Native: platform.NativeOptions{
			Display:    c.Display,
			XAuthority: c.XAuthority,
			DefaultSpacing: platform.Size{
				Width:  c.DefaultSpacing.Width,
				Height: c.DefaultSpacing.Height,
			},
		},
	}
}

// Codec returns the configured code page codec.
func (c *Config) Codec() (*oem.Codec, error) {
	return oem.New(c.CodePage)
}

// SaveTo writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := platform.ParseBackend(c.Backend); err != nil {
		return &ValidationError{Path: "backend", Err: err}
	}
	if c.HostTimeout <= 0 {
		return &ValidationError{Path: "host_timeout", Err: fmt.Errorf("host_timeout must be > 0")}
	}
	if _, err := oem.New(c.CodePage); err != nil {
		return &ValidationError{Path: "codepage", Err: err}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.DefaultSpacing.Width <= 0 {
		return &ValidationError{Path: "default_spacing.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.DefaultSpacing.Height <= 0 {
		return &ValidationError{Path: "default_spacing.height", Err: fmt.Errorf("height must be > 0")}
	}
	if c.SaveFixture && strings.TrimSpace(c.Fixture) == "" {
		return &ValidationError{Path: "save_fixture", Err: fmt.Errorf("save_fixture requires fixture")}
	}
	if c.Backend == string(platform.BackendX11) || c.Backend == string(platform.BackendShell) {
		if strings.TrimSpace(c.Fixture) != "" {
			return &ValidationError{Path: "fixture", Err: fmt.Errorf("fixture only applies to the memory or auto backend")}
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
