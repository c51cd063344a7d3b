package x11

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/xprop"
)

// LayoutAtom is the root window property shared with desktop icon managers.
// Layout: CARDINAL[4] = {cell width, cell height, flag bits, change serial}.
const LayoutAtom = "_DESKCTL_LAYOUT"

const (
	LayoutFlagAutoArrange = 1 << 0
	LayoutFlagSnapToGrid  = 1 << 1
)

// LayoutHints is the decoded _DESKCTL_LAYOUT property.
type LayoutHints struct {
	CellWidth  int
	CellHeight int
	Flags      uint
	Serial     uint
}

// GetLayoutHints reads the layout property. ok is false when it is absent.
func (c *Connection) GetLayoutHints() (hints LayoutHints, ok bool, err error) {
	vals, err := xprop.PropValNums(xprop.GetProperty(c.XUtil, c.Root, LayoutAtom))
	if err != nil {
		// xprop reports a missing property as an error; treat it as unset.
		return LayoutHints{}, false, nil
	}
	hints, err = decodeLayoutHints(vals)
	if err != nil {
		return LayoutHints{}, false, err
	}
	return hints, true, nil
}

func decodeLayoutHints(vals []uint) (LayoutHints, error) {
	if len(vals) < 4 {
		return LayoutHints{}, fmt.Errorf("%s: expected 4 values, got %d", LayoutAtom, len(vals))
	}
	return LayoutHints{
		CellWidth:  int(vals[0]),
		CellHeight: int(vals[1]),
		Flags:      vals[2],
		Serial:     vals[3],
	}, nil
}

func (h LayoutHints) values() []uint {
	return []uint{uint(h.CellWidth), uint(h.CellHeight), h.Flags, h.Serial}
}

// SetLayoutHints writes all fields with a single ChangeProperty request,
// so listeners never observe a partial update.
func (c *Connection) SetLayoutHints(h LayoutHints) error {
	err := xprop.ChangeProp32(c.XUtil, c.Root, LayoutAtom, "CARDINAL", h.values()...)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", LayoutAtom, err)
	}
	return nil
}
