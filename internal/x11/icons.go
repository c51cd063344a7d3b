package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// IconWindow is a top-level desktop window that renders a single icon.
type IconWindow struct {
	Window xproto.Window
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// IconWindows lists mapped desktop-type windows smaller than the root, in
// stacking order (bottom to top). Desktop managers that draw one window per
// icon publish them this way; the full-screen desktop background is skipped.
func (c *Connection) IconWindows() ([]IconWindow, error) {
	conn := c.XUtil.Conn()

	tree, err := xproto.QueryTree(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query root window tree: %w", err)
	}

	rootGeom, err := xproto.GetGeometry(conn, xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get root geometry: %w", err)
	}

	icons := make([]IconWindow, 0, len(tree.Children))
	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(conn, win).Reply()
		if err != nil || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		if !c.isDesktopType(win) {
			continue
		}

		geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
		if err != nil {
			continue
		}
		if geom.Width >= rootGeom.Width && geom.Height >= rootGeom.Height {
			continue
		}

		icons = append(icons, IconWindow{
			Window: win,
			Name:   c.windowName(win),
			X:      int(geom.X),
			Y:      int(geom.Y),
			Width:  int(geom.Width),
			Height: int(geom.Height),
		})
	}
	return icons, nil
}

// MoveIcons repositions icon windows. Requests are pipelined and checked
// afterwards so a batch costs one round trip; the error names every window
// the server rejected.
func (c *Connection) MoveIcons(windows []xproto.Window, xs, ys []int) error {
	if len(windows) != len(xs) || len(windows) != len(ys) {
		return fmt.Errorf("move icons: mismatched argument lengths")
	}

	conn := c.XUtil.Conn()
	cookies := make([]xproto.ConfigureWindowCookie, len(windows))
	for i, win := range windows {
		cookies[i] = xproto.ConfigureWindowChecked(
			conn,
			win,
			xproto.ConfigWindowX|xproto.ConfigWindowY,
			[]uint32{uint32(int32(xs[i])), uint32(int32(ys[i]))},
		)
	}

	var failed []string
	for i, cookie := range cookies {
		if err := cookie.Check(); err != nil {
			failed = append(failed, fmt.Sprintf("0x%x: %v", windows[i], err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to move %d icon window(s): %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

// PointerPosition returns the pointer position relative to the root window.
func (c *Connection) PointerPosition() (int, int, error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	return int(pointer.RootX), int(pointer.RootY), nil
}

func (c *Connection) isDesktopType(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" {
			return true
		}
	}
	return false
}

func (c *Connection) windowName(win xproto.Window) string {
	name, err := ewmh.WmNameGet(c.XUtil, win)
	if err == nil {
		name = strings.TrimSpace(name)
		if name != "" {
			return name
		}
	}

	name, err = icccm.WmNameGet(c.XUtil, win)
	if err == nil {
		name = strings.TrimSpace(name)
		if name != "" {
			return name
		}
	}

	if class, err := icccm.WmClassGet(c.XUtil, win); err == nil {
		return strings.TrimSpace(class.Instance)
	}
	return ""
}
