package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envOverrides are read after files; a non-empty variable wins over YAML.
type envOverrides struct {
	Backend     string        `env:"DESKCTL_BACKEND"`
	Fixture     string        `env:"DESKCTL_FIXTURE"`
	HostTimeout time.Duration `env:"DESKCTL_HOST_TIMEOUT"`
	CodePage    string        `env:"DESKCTL_CODEPAGE"`
	LogLevel    string        `env:"DESKCTL_LOG_LEVEL"`
}

func applyEnv(raw *RawConfig, sources sourceMap) error {
	var e envOverrides
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	str := func(v string, dst **string, key, name string) {
		if v != "" {
			*dst = &v
			sources.env(key, name)
		}
	}
	str(e.Backend, &raw.Backend, "backend", "DESKCTL_BACKEND")
	str(e.Fixture, &raw.Fixture, "fixture", "DESKCTL_FIXTURE")
	str(e.CodePage, &raw.CodePage, "codepage", "DESKCTL_CODEPAGE")
	str(e.LogLevel, &raw.LogLevel, "log_level", "DESKCTL_LOG_LEVEL")
	if e.HostTimeout != 0 {
		raw.HostTimeout = &e.HostTimeout
		sources.env("host_timeout", "DESKCTL_HOST_TIMEOUT")
	}
	return nil
}
