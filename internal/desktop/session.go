// Package desktop synchronizes an in-process view of desktop icons with a
// live, externally mutable icon surface.
package desktop

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/deskctl/internal/actionlog"
	"github.com/1broseidon/deskctl/internal/platform"
	"github.com/google/uuid"
)

// DefaultHostTimeout bounds every wait on the host surface.
const DefaultHostTimeout = 5 * time.Second

// Options configure a session.
type Options struct {
	// Open connects to the surface. It runs on the host goroutine.
	Open        platform.Opener
	HostTimeout time.Duration
	Logger      *slog.Logger
	Actions     *actionlog.Logger
}

type hostCall struct {
	fn     func(platform.Surface) error
	result chan error
}

// Session owns one live surface connection. Every surface call runs on a
// single host goroutine locked to its OS thread.
//
// Public operations on a session, and on everything derived from it, must not
// overlap: a call that arrives while another is in flight fails with
// ErrCrossContextAccess.
type Session struct {
	id      string
	timeout time.Duration
	logger  *slog.Logger
	actions *actionlog.Logger

	guard  sync.Mutex
	closed atomic.Bool
	wedged atomic.Bool

	calls chan hostCall
	done  chan struct{}

	registry *Registry
}

// Open starts the host goroutine and connects to the surface on it.
func Open(opts Options) (*Session, error) {
	if opts.Open == nil {
		return nil, wrap(ErrSessionUnavailable, errors.New("no surface configured"))
	}
	timeout := opts.HostTimeout
	if timeout <= 0 {
		timeout = DefaultHostTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := uuid.NewString()
	s := &Session{
		id:      id,
		timeout: timeout,
		logger:  logger.With("session", id),
		actions: opts.Actions,
		calls:   make(chan hostCall),
		done:    make(chan struct{}),
	}
	s.registry = &Registry{session: s}

	ready := make(chan error, 1)
	go s.host(opts.Open, ready)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-ready:
		if err != nil {
			<-s.done
			s.closed.Store(true)
			s.logger.Warn("session: surface unavailable", "error", err)
			s.actions.Log(actionlog.ActionSessionOpen, s.id, err, nil)
			return nil, wrap(ErrSessionUnavailable, err)
		}
	case <-timer.C:
		// The opener may still finish; the host goroutine then closes what it
		// opened once it sees the closed call channel.
		s.closed.Store(true)
		close(s.calls)
		s.logger.Warn("session: surface open timed out", "timeout", timeout)
		return nil, wrap(ErrSessionUnavailable, wrap(ErrHostTimeout, fmt.Errorf("open exceeded %s", timeout)))
	}

	s.logger.Info("session opened")
	s.actions.Log(actionlog.ActionSessionOpen, s.id, nil, nil)
	return s, nil
}

// host is the only goroutine that touches the surface.
func (s *Session) host(open platform.Opener, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)

	surface, err := safeOpen(open)
	if err != nil {
		ready <- err
		return
	}
	ready <- nil

	for call := range s.calls {
		call.result <- safeCall(call.fn, surface)
	}
	if err := surface.Close(); err != nil {
		s.logger.Warn("session: surface close failed", "error", err)
	}
}

func safeOpen(open platform.Opener) (surface platform.Surface, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("surface open panicked: %v", r)
		}
	}()
	surface, err = open()
	if err == nil && surface == nil {
		err = errors.New("surface opener returned nil")
	}
	return surface, err
}

func safeCall(fn func(platform.Surface) error, surface platform.Surface) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("surface call panicked: %v", r)
		}
	}()
	return fn(surface)
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Registry returns the session's icon registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// enter acquires the session guard without blocking.
func (s *Session) enter() (release func(), err error) {
	if s == nil {
		return nil, ErrSessionClosed
	}
	if !s.guard.TryLock() {
		return nil, ErrCrossContextAccess
	}
	if s.closed.Load() {
		s.guard.Unlock()
		return nil, ErrSessionClosed
	}
	return s.guard.Unlock, nil
}

// call runs fn on the host goroutine. The guard must be held.
func (s *Session) call(fn func(platform.Surface) error) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.wedged.Load() {
		return wrap(ErrHostTimeout, errors.New("host is unresponsive"))
	}

	c := hostCall{fn: fn, result: make(chan error, 1)}
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case s.calls <- c:
	case <-timer.C:
		return s.wedge()
	}
	select {
	case err := <-c.result:
		return err
	case <-timer.C:
		return s.wedge()
	}
}

func (s *Session) wedge() error {
	s.wedged.Store(true)
	s.logger.Warn("session: host call timed out", "timeout", s.timeout)
	return wrap(ErrHostTimeout, fmt.Errorf("no response within %s", s.timeout))
}

// Close releases the surface on the host goroutine and stops it. Registries
// and handles derived from the session fail with ErrSessionClosed afterwards.
// Close is idempotent.
func (s *Session) Close() error {
	if s == nil || s.closed.Load() {
		return nil
	}
	if !s.guard.TryLock() {
		return ErrCrossContextAccess
	}
	defer s.guard.Unlock()
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(s.calls)
	s.registry.drop()

	var err error
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case <-s.done:
	case <-timer.C:
		err = wrap(ErrHostTimeout, errors.New("host did not stop"))
	}

	s.logger.Info("session closed", "wedged", s.wedged.Load())
	s.actions.Log(actionlog.ActionSessionClose, s.id, err, nil)
	return err
}
