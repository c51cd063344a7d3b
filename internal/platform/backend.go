package platform

import (
	"errors"
	"fmt"
)

// ItemID is an opaque, backend-specific icon identity.
type ItemID string

// Point is a position in desktop pixel coordinates.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Size describes a width/height pair in pixels.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Contains reports whether p lies inside [0,Width) x [0,Height).
func (s Size) Contains(p Point) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// FolderFlags are the desktop's own arrangement settings.
type FolderFlags struct {
	SnapToGrid  bool `json:"snap_to_grid" yaml:"snap_to_grid"`
	AutoArrange bool `json:"auto_arrange" yaml:"auto_arrange"`
}

// Item is one icon as reported by a surface during enumeration.
type Item struct {
	ID       ItemID
	Name     string
	Position Point
}

// ErrItemNotFound is returned when a surface no longer knows an item.
var ErrItemNotFound = errors.New("item not found on surface")

// Surface abstracts a live desktop icon surface.
//
// Implementations are not required to be safe for concurrent use; the desktop
// session serializes every call onto a single host goroutine.
type Surface interface {
	// Items enumerates icons in the host's view order.
	Items() ([]Item, error)
	// PositionItems moves every ids[i] to pts[i] in one host mutation.
	PositionItems(ids []ItemID, pts []Point) error
	Resolution() (Size, error)
	Spacing() (Size, error)
	FolderFlags() (FolderFlags, error)
	// SetFolderFlags applies both flags in a single host update.
	SetFolderFlags(flags FolderFlags) error
	CursorPosition() (Point, error)
	// NotifyChanged tells the host shell the desktop contents changed.
	NotifyChanged() error
	// DesktopDirectory returns the filesystem directory backing the desktop, if any.
	DesktopDirectory() (string, error)
	Close() error
}

// Opener connects to a surface. It is invoked on the session host goroutine.
type Opener func() (Surface, error)
