package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/1broseidon/deskctl/internal/actionlog"
	"github.com/1broseidon/deskctl/internal/config"
	"github.com/1broseidon/deskctl/internal/desktop"
	"github.com/1broseidon/deskctl/internal/platform"
	"github.com/1broseidon/deskctl/internal/runtimepath"
)

const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitNotFound    = 3
	exitPartial     = 4
	exitRejected    = 5
	exitUnavailable = 6
)

// exitCode maps engine error kinds onto process exit codes.
func exitCode(err error) int {
	switch desktop.CodeOf(err) {
	case "":
		return exitOK
	case desktop.CodeNotFound:
		return exitNotFound
	case desktop.CodePartialFailure:
		return exitPartial
	case desktop.CodeStaleHandle, desktop.CodeOutOfBounds, desktop.CodeLengthMismatch:
		return exitRejected
	case desktop.CodeSessionUnavailable, desktop.CodeSessionClosed, desktop.CodeHostTimeout, desktop.CodeCrossContext:
		return exitUnavailable
	default:
		return exitError
	}
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "deskctl: %v\n", err)
	return exitCode(err)
}

// surfaceFlags are accepted by every command that touches the desktop.
type surfaceFlags struct {
	configPath string
	backend    string
	fixture    string
}

func addSurfaceFlags(fs *flag.FlagSet) *surfaceFlags {
	f := &surfaceFlags{}
	fs.StringVar(&f.configPath, "config", "", "Config file path (default: ~/.config/deskctl/config.yaml)")
	fs.StringVar(&f.backend, "backend", "", "Surface backend: auto, memory, x11 or shell")
	fs.StringVar(&f.fixture, "fixture", "", "Memory backend fixture (YAML)")
	return f
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// load reads the config and applies command-line overrides on top.
func (f *surfaceFlags) load() (*config.Config, error) {
	res, err := loadConfigResult(f.configPath)
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.fixture != "" {
		cfg.Fixture = f.fixture
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// surfaceOptions resolves backend options. The memory backend without a
// fixture keeps its desktop in the runtime directory so consecutive commands
// see each other's moves.
func surfaceOptions(cfg *config.Config) (platform.Options, error) {
	opts := cfg.SurfaceOptions()
	if opts.Backend == platform.BackendMemory && strings.TrimSpace(opts.Fixture) == "" {
		path, err := runtimepath.MemoryStatePath()
		if err != nil {
			return platform.Options{}, err
		}
		opts.Fixture = path
		opts.SaveFixture = true
	}
	return opts, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func newActionLogger(cfg *config.Config, logger *slog.Logger) *actionlog.Logger {
	logCfg := cfg.GetLoggingConfig()
	if !logCfg.Enabled {
		return nil
	}
	actions, err := actionlog.New(actionlog.Config{
		Enabled:   logCfg.Enabled,
		Level:     actionlog.ParseLevel(logCfg.Level),
		FilePath:  logCfg.File,
		MaxSizeMB: logCfg.MaxSizeMB,
		MaxFiles:  logCfg.MaxFiles,
	})
	if err != nil {
		logger.Warn("action log disabled", "error", err)
		return nil
	}
	return actions
}

// openController connects to the configured desktop. The returned close func
// releases the session and the action log.
func openController(cfg *config.Config) (*desktop.Controller, func(), error) {
	opts, err := surfaceOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg.LogLevel)
	actions := newActionLogger(cfg, logger)

	ctrl, err := desktop.NewController(desktop.Options{
		Open:        opts.Opener(),
		HostTimeout: cfg.HostTimeout,
		Logger:      logger,
		Actions:     actions,
	})
	if err != nil {
		actions.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if err := ctrl.Close(); err != nil {
			logger.Warn("session close failed", "error", err)
		}
		actions.Close()
	}
	return ctrl, closeFn, nil
}

// withController loads config from f, opens the desktop and runs fn.
func withController(f *surfaceFlags, fn func(*desktop.Controller, *config.Config) error) int {
	cfg, err := f.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			return exitUsage
		}
		return exitError
	}
	ctrl, closeFn, err := openController(cfg)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	if err := fn(ctrl, cfg); err != nil {
		return fail(err)
	}
	return exitOK
}
