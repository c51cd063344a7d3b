package desktop

import (
	"github.com/1broseidon/deskctl/internal/actionlog"
	"github.com/1broseidon/deskctl/internal/platform"
)

// Layout reads desktop metrics and reads/writes folder flags live.
type Layout struct {
	session *Session
}

// Layout returns the session's layout settings.
func (s *Session) Layout() *Layout {
	return &Layout{session: s}
}

func query[T any](s *Session, get func(platform.Surface) (T, error)) (T, error) {
	var out T
	release, err := s.enter()
	if err != nil {
		return out, err
	}
	defer release()

	err = s.call(func(surface platform.Surface) error {
		var err error
		out, err = get(surface)
		return err
	})
	return out, err
}

func (l *Layout) Resolution() (platform.Size, error) {
	return query(l.session, platform.Surface.Resolution)
}

// Spacing returns the grid cell size used for snap-to-grid.
func (l *Layout) Spacing() (platform.Size, error) {
	return query(l.session, platform.Surface.Spacing)
}

func (l *Layout) FolderFlags() (platform.FolderFlags, error) {
	return query(l.session, platform.Surface.FolderFlags)
}

func (l *Layout) CursorPosition() (platform.Point, error) {
	return query(l.session, platform.Surface.CursorPosition)
}

func (l *Layout) DesktopDirectory() (string, error) {
	return query(l.session, platform.Surface.DesktopDirectory)
}

// SetFolderFlags applies both flags in one host update. Turning auto-arrange
// on lets the host move icons, so the registry generation is retired.
func (l *Layout) SetFolderFlags(flags platform.FolderFlags) error {
	s := l.session
	release, err := s.enter()
	if err != nil {
		return err
	}
	defer release()

	err = s.call(func(surface platform.Surface) error {
		return surface.SetFolderFlags(flags)
	})
	if err == nil && flags.AutoArrange {
		s.registry.invalidate()
	}
	s.actions.Log(actionlog.ActionFlags, s.id, err, map[string]any{
		"snap_to_grid": flags.SnapToGrid,
		"auto_arrange": flags.AutoArrange,
	})
	return err
}

// NotifyChanged asks the host shell to rescan the desktop and retires the
// current generation.
func (l *Layout) NotifyChanged() error {
	s := l.session
	release, err := s.enter()
	if err != nil {
		return err
	}
	defer release()

	err = s.call(platform.Surface.NotifyChanged)
	s.registry.invalidate()
	return err
}
