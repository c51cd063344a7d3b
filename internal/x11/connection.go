package x11

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to the given display (empty means $DISPLAY).
// A non-empty xauthority overrides $XAUTHORITY for the handshake.
func NewConnection(display, xauthority string) (*Connection, error) {
	if xa := strings.TrimSpace(xauthority); xa != "" {
		if err := os.Setenv("XAUTHORITY", xa); err != nil {
			return nil, fmt.Errorf("failed to set XAUTHORITY: %w", err)
		}
	}

	xu, err := xgbutil.NewConnDisplay(strings.TrimSpace(display))
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
