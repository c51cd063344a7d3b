package desktop

import (
	"fmt"

	"github.com/1broseidon/deskctl/internal/platform"
	"github.com/1broseidon/deskctl/internal/tiling"
)

// Controller is the entry point for callers: one session plus its registry,
// layout settings and batch repositioner.
type Controller struct {
	session  *Session
	registry *Registry
	layout   *Layout
	batch    *BatchRepositioner
}

// NewController opens a session with opts.
func NewController(opts Options) (*Controller, error) {
	s, err := Open(opts)
	if err != nil {
		return nil, err
	}
	return &Controller{
		session:  s,
		registry: s.Registry(),
		layout:   s.Layout(),
		batch:    s.Batch(),
	}, nil
}

// Session returns the underlying session.
func (c *Controller) Session() *Session { return c.session }

func (c *Controller) FolderFlags() (platform.FolderFlags, error) {
	return c.layout.FolderFlags()
}

func (c *Controller) SetFolderFlags(flags platform.FolderFlags) error {
	return c.layout.SetFolderFlags(flags)
}

// EnumerateIcons refreshes and calls fn once per icon in enumeration order.
func (c *Controller) EnumerateIcons(fn func(index int, h *IconHandle) error) error {
	return c.registry.Enumerate(fn)
}

// AllIcons enumerates afresh and returns handles in enumeration order.
func (c *Controller) AllIcons() ([]*IconHandle, error) {
	release, err := c.session.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	if err := c.registry.refresh(); err != nil {
		return nil, err
	}
	return c.registry.handles(), nil
}

// IconByName returns the first icon named name in the current generation,
// enumerating only when none is live. Handles from an earlier AllIcons stay
// valid.
func (c *Controller) IconByName(name string) (*IconHandle, bool, error) {
	release, err := c.session.enter()
	if err != nil {
		return nil, false, err
	}
	defer release()

	if err := c.registry.ensure(); err != nil {
		return nil, false, err
	}
	return c.registry.byName(name)
}

// Resolve enumerates afresh and maps each name to the first icon carrying
// it. Any unknown name fails the whole lookup with ErrNotFound.
func (c *Controller) Resolve(names []string) ([]*IconHandle, error) {
	release, err := c.session.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	if err := c.registry.refresh(); err != nil {
		return nil, err
	}
	out := make([]*IconHandle, len(names))
	for i, name := range names {
		h, ok, err := c.registry.byName(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, wrap(ErrNotFound, fmt.Errorf("%q", name))
		}
		out[i] = h
	}
	return out, nil
}

// Refresh enumerates into a new generation and returns its records.
func (c *Controller) Refresh() ([]Icon, error) {
	return c.registry.Refresh()
}

func (c *Controller) DesktopResolution() (platform.Size, error) {
	return c.layout.Resolution()
}

func (c *Controller) IconSpacing() (platform.Size, error) {
	return c.layout.Spacing()
}

func (c *Controller) CursorPosition() (platform.Point, error) {
	return c.layout.CursorPosition()
}

func (c *Controller) DesktopDirectory() (string, error) {
	return c.layout.DesktopDirectory()
}

func (c *Controller) NotifyChanged() error {
	return c.layout.NotifyChanged()
}

// RepositionIcons moves handles[i] to points[i]; see BatchRepositioner.Reposition.
func (c *Controller) RepositionIcons(handles []*IconHandle, points []platform.Point) (*BatchResult, error) {
	return c.batch.Reposition(handles, points)
}

// Close closes the session.
func (c *Controller) Close() error {
	return c.session.Close()
}

// Arrange places every icon on the spacing grid, filling columns top to
// bottom, or rows of cols icons when cols > 0.
func (c *Controller) Arrange(cols int) (*BatchResult, error) {
	res, err := c.layout.Resolution()
	if err != nil {
		return nil, err
	}
	spacing, err := c.layout.Spacing()
	if err != nil {
		return nil, err
	}
	handles, err := c.AllIcons()
	if err != nil {
		return nil, err
	}

	grid := tiling.Grid{CellWidth: spacing.Width, CellHeight: spacing.Height, Width: res.Width, Height: res.Height}
	cells, err := grid.Arrange(len(handles), cols)
	if err != nil {
		return nil, fmt.Errorf("arrange: %w", err)
	}
	points := make([]platform.Point, len(cells))
	for i, cell := range cells {
		points[i] = platform.Point{X: cell.X, Y: cell.Y}
	}
	return c.RepositionIcons(handles, points)
}
