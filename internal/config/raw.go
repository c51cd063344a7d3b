package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Include is one include entry and where it was written.
type Include struct {
	Path   string
	Line   int
	Column int
}

// IncludeList accepts a single path or a list of paths. Directories pull in
// their *.yaml and *.yml files in name order.
//
//	include: extra.yaml
//	include: [config.d, ~/shared/desk.yaml]
type IncludeList []Include

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	items := []*yaml.Node{value}
	if value.Kind == yaml.SequenceNode {
		items = value.Content
	}
	out := make(IncludeList, 0, len(items))
	for _, item := range items {
		if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
			return fmt.Errorf("line %d: include must be a path or a list of paths", item.Line)
		}
		out = append(out, Include{Path: item.Value, Line: item.Line, Column: item.Column})
	}
	*l = out
	return nil
}

type RawSpacing struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawLoggingConfig struct {
	Enabled   *bool   `yaml:"enabled"`
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawConfig struct {
	Include        IncludeList       `yaml:"include"`
	Backend        *string           `yaml:"backend"`
	Display        *string           `yaml:"display"`
	XAuthority     *string           `yaml:"xauthority"`
	HostTimeout    *time.Duration    `yaml:"host_timeout"`
	CodePage       *string           `yaml:"codepage"`
	LogLevel       *string           `yaml:"log_level"`
	DefaultSpacing *RawSpacing       `yaml:"default_spacing"`
	Fixture        *string           `yaml:"fixture"`
	SaveFixture    *bool             `yaml:"save_fixture"`
	Logging        *RawLoggingConfig `yaml:"logging"`
}

// merge overlays other onto r; set fields in other win.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	out.Include = nil

	if other.Backend != nil {
		out.Backend = other.Backend
	}
	if other.Display != nil {
		out.Display = other.Display
	}
	if other.XAuthority != nil {
		out.XAuthority = other.XAuthority
	}
	if other.HostTimeout != nil {
		out.HostTimeout = other.HostTimeout
	}
	if other.CodePage != nil {
		out.CodePage = other.CodePage
	}
	if other.LogLevel != nil {
		out.LogLevel = other.LogLevel
	}
	if other.DefaultSpacing != nil {
		base := RawSpacing{}
		if out.DefaultSpacing != nil {
			base = *out.DefaultSpacing
		}
		if other.DefaultSpacing.Width != nil {
			base.Width = other.DefaultSpacing.Width
		}
		if other.DefaultSpacing.Height != nil {
			base.Height = other.DefaultSpacing.Height
		}
		out.DefaultSpacing = &base
	}
	if other.Fixture != nil {
		out.Fixture = other.Fixture
	}
	if other.SaveFixture != nil {
		out.SaveFixture = other.SaveFixture
	}
	if other.Logging != nil {
		base := RawLoggingConfig{}
		if out.Logging != nil {
			base = *out.Logging
		}
		if other.Logging.Enabled != nil {
			base.Enabled = other.Logging.Enabled
		}
		if other.Logging.Level != nil {
			base.Level = other.Logging.Level
		}
		if other.Logging.File != nil {
			base.File = other.Logging.File
		}
		if other.Logging.MaxSizeMB != nil {
			base.MaxSizeMB = other.Logging.MaxSizeMB
		}
		if other.Logging.MaxFiles != nil {
			base.MaxFiles = other.Logging.MaxFiles
		}
		out.Logging = &base
	}
	return out
}
