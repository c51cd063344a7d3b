package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("$%s: %s: %v", e.Source.Name, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw values over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Backend != nil {
		cfg.Backend = *raw.Backend
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.HostTimeout != nil {
		cfg.HostTimeout = *raw.HostTimeout
	}
	if raw.CodePage != nil {
		cfg.CodePage = *raw.CodePage
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.DefaultSpacing != nil {
		cfg.DefaultSpacing.Width = derefInt(raw.DefaultSpacing.Width, cfg.DefaultSpacing.Width)
		cfg.DefaultSpacing.Height = derefInt(raw.DefaultSpacing.Height, cfg.DefaultSpacing.Height)
	}
	if raw.Fixture != nil {
		cfg.Fixture = *raw.Fixture
	}
	if raw.SaveFixture != nil {
		cfg.SaveFixture = *raw.SaveFixture
	}
	if raw.Logging != nil {
		if raw.Logging.Enabled != nil {
			cfg.Logging.Enabled = *raw.Logging.Enabled
		}
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = *raw.Logging.File
		}
		cfg.Logging.MaxSizeMB = derefInt(raw.Logging.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(raw.Logging.MaxFiles, cfg.Logging.MaxFiles)
	}

	return cfg
}

func derefInt(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
