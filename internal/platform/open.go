package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Backend names a surface implementation.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendMemory Backend = "memory"
	BackendX11    Backend = "x11"
	BackendShell  Backend = "shell"
)

// ErrBackendUnsupported is returned when a backend is not built for this OS.
var ErrBackendUnsupported = errors.New("backend not supported on this platform")

// ParseBackend normalizes a backend name. Empty means auto.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendMemory, BackendX11, BackendShell:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, memory, x11 or shell)", name)
	}
}

// NativeOptions configure the OS surface.
type NativeOptions struct {
	Display        string
	XAuthority     string
	DefaultSpacing Size
}

// Options select and configure a surface.
type Options struct {
	Backend Backend
	// Fixture is a YAML memory fixture. Under auto it forces the memory backend.
	Fixture string
	// SaveFixture writes memory state back to Fixture on Close.
	SaveFixture bool
	Native      NativeOptions
}

// Open connects to the surface described by opts.
func Open(opts Options) (Surface, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendAuto
	}
	if backend == BackendAuto {
		if strings.TrimSpace(opts.Fixture) != "" {
			backend = BackendMemory
		} else {
			backend = nativeBackend
		}
	}

	switch {
	case backend == BackendMemory:
		return openMemory(opts)
	case backend == nativeBackend:
		return openNative(opts.Native)
	case backend == BackendX11 || backend == BackendShell:
		return nil, fmt.Errorf("%w: %s", ErrBackendUnsupported, backend)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func openMemory(opts Options) (Surface, error) {
	path := strings.TrimSpace(opts.Fixture)
	if path == "" {
		return NewMemorySurface(DefaultMemoryFixture()), nil
	}
	m, err := LoadMemorySurface(path)
	if errors.Is(err, os.ErrNotExist) && opts.SaveFixture {
		// First run: seed the fixture from the default desktop.
		m, err = NewMemorySurface(DefaultMemoryFixture()), nil
	}
	if err != nil {
		return nil, err
	}
	if opts.SaveFixture {
		m.SaveOnClose(path)
	}
	return m, nil
}

// Opener returns an Opener bound to opts.
func (opts Options) Opener() Opener {
	return func() (Surface, error) {
		return Open(opts)
	}
}
