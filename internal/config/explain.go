package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	backend
//	display
//	xauthority
//	host_timeout
//	codepage
//	log_level
//	default_spacing, default_spacing.width, default_spacing.height
//	fixture
//	save_fixture
//	logging, logging.enabled, logging.level, logging.file,
//	logging.max_size_mb, logging.max_files
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "backend":
		return leaf(cfg.Backend)
	case "display":
		return leaf(cfg.Display)
	case "xauthority":
		return leaf(cfg.XAuthority)
	case "host_timeout":
		return leaf(cfg.HostTimeout.String())
	case "codepage":
		return leaf(cfg.CodePage)
	case "log_level":
		return leaf(cfg.LogLevel)
	case "fixture":
		return leaf(cfg.Fixture)
	case "save_fixture":
		return leaf(cfg.SaveFixture)
	case "default_spacing":
		if len(parts) == 1 {
			return cfg.DefaultSpacing, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "width":
			return cfg.DefaultSpacing.Width, nil
		case "height":
			return cfg.DefaultSpacing.Height, nil
		}
	case "logging":
		if len(parts) == 1 {
			return cfg.Logging, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "enabled":
			return cfg.Logging.Enabled, nil
		case "level":
			return cfg.Logging.Level, nil
		case "file":
			return cfg.Logging.File, nil
		case "max_size_mb":
			return cfg.Logging.MaxSizeMB, nil
		case "max_files":
			return cfg.Logging.MaxFiles, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
