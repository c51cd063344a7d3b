//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/deskctl/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// X11Surface exposes per-window desktop icons on an X11 display.
type X11Surface struct {
	conn           *x11.Connection
	defaultSpacing Size
}

var _ Surface = (*X11Surface)(nil)

// NewX11Surface opens a fresh X11 connection.
func NewX11Surface(opts NativeOptions) (*X11Surface, error) {
	conn, err := x11.NewConnection(opts.Display, opts.XAuthority)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &X11Surface{conn: conn, defaultSpacing: opts.DefaultSpacing}, nil
}

const nativeBackend = BackendX11

func openNative(opts NativeOptions) (Surface, error) {
	return NewX11Surface(opts)
}

func (s *X11Surface) connection() (*x11.Connection, error) {
	if s == nil || s.conn == nil {
		return nil, fmt.Errorf("x11 surface connection is nil")
	}
	return s.conn, nil
}

func (s *X11Surface) Items() ([]Item, error) {
	conn, err := s.connection()
	if err != nil {
		return nil, err
	}
	windows, err := conn.IconWindows()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(windows))
	for _, w := range windows {
		items = append(items, Item{
			ID:       windowItemID(w.Window),
			Name:     w.Name,
			Position: Point{X: w.X, Y: w.Y},
		})
	}
	return items, nil
}

func (s *X11Surface) PositionItems(ids []ItemID, pts []Point) error {
	conn, err := s.connection()
	if err != nil {
		return err
	}
	if len(ids) != len(pts) {
		return fmt.Errorf("position items: %d ids but %d points", len(ids), len(pts))
	}

	windows := make([]xproto.Window, len(ids))
	xs := make([]int, len(ids))
	ys := make([]int, len(ids))
	for i, id := range ids {
		win, err := parseWindowItemID(id)
		if err != nil {
			return err
		}
		windows[i] = win
		xs[i] = pts[i].X
		ys[i] = pts[i].Y
	}
	return conn.MoveIcons(windows, xs, ys)
}

func (s *X11Surface) Resolution() (Size, error) {
	conn, err := s.connection()
	if err != nil {
		return Size{}, err
	}
	w, h, err := conn.DesktopSize()
	if err != nil {
		return Size{}, err
	}
	return Size{Width: w, Height: h}, nil
}

func (s *X11Surface) Spacing() (Size, error) {
	hints, ok, err := s.layoutHints()
	if err != nil {
		return Size{}, err
	}
	if ok && hints.CellWidth > 0 && hints.CellHeight > 0 {
		return Size{Width: hints.CellWidth, Height: hints.CellHeight}, nil
	}
	return s.defaultSpacing, nil
}

func (s *X11Surface) FolderFlags() (FolderFlags, error) {
	hints, _, err := s.layoutHints()
	if err != nil {
		return FolderFlags{}, err
	}
	return FolderFlags{
		SnapToGrid:  hints.Flags&x11.LayoutFlagSnapToGrid != 0,
		AutoArrange: hints.Flags&x11.LayoutFlagAutoArrange != 0,
	}, nil
}

func (s *X11Surface) SetFolderFlags(flags FolderFlags) error {
	conn, err := s.connection()
	if err != nil {
		return err
	}
	hints, err := s.currentHints()
	if err != nil {
		return err
	}
	hints.Flags &^= x11.LayoutFlagSnapToGrid | x11.LayoutFlagAutoArrange
	if flags.SnapToGrid {
		hints.Flags |= x11.LayoutFlagSnapToGrid
	}
	if flags.AutoArrange {
		hints.Flags |= x11.LayoutFlagAutoArrange
	}
	hints.Serial++
	return conn.SetLayoutHints(hints)
}

func (s *X11Surface) CursorPosition() (Point, error) {
	conn, err := s.connection()
	if err != nil {
		return Point{}, err
	}
	x, y, err := conn.PointerPosition()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// NotifyChanged bumps the layout serial; icon managers watching the root
// window receive a PropertyNotify and rescan.
func (s *X11Surface) NotifyChanged() error {
	conn, err := s.connection()
	if err != nil {
		return err
	}
	hints, err := s.currentHints()
	if err != nil {
		return err
	}
	hints.Serial++
	return conn.SetLayoutHints(hints)
}

// DesktopDirectory resolves the XDG desktop directory.
func (s *X11Surface) DesktopDirectory() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("XDG_DESKTOP_DIR")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "Desktop"), nil
}

// Close closes the underlying X11 connection.
func (s *X11Surface) Close() error {
	if s != nil && s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return nil
}

func (s *X11Surface) layoutHints() (x11.LayoutHints, bool, error) {
	conn, err := s.connection()
	if err != nil {
		return x11.LayoutHints{}, false, err
	}
	return conn.GetLayoutHints()
}

// currentHints returns the published hints, seeded from the default spacing
// when the property has never been written.
func (s *X11Surface) currentHints() (x11.LayoutHints, error) {
	hints, ok, err := s.layoutHints()
	if err != nil {
		return x11.LayoutHints{}, err
	}
	if !ok {
		hints = x11.LayoutHints{
			CellWidth:  s.defaultSpacing.Width,
			CellHeight: s.defaultSpacing.Height,
		}
	}
	return hints, nil
}

func windowItemID(win xproto.Window) ItemID {
	return ItemID("x11-0x" + strconv.FormatUint(uint64(win), 16))
}

func parseWindowItemID(id ItemID) (xproto.Window, error) {
	raw, ok := strings.CutPrefix(string(id), "x11-0x")
	if !ok {
		return 0, fmt.Errorf("%w: %s is not an x11 item", ErrItemNotFound, id)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrItemNotFound, id, err)
	}
	return xproto.Window(v), nil
}
