package desktop

import (
	"fmt"

	"github.com/1broseidon/deskctl/internal/actionlog"
	"github.com/1broseidon/deskctl/internal/platform"
	"github.com/1broseidon/deskctl/internal/tiling"
)

// BatchResult reports what a batch reposition sent to the host.
type BatchResult struct {
	// Names holds the display name of each handle, in handle order.
	Names []string `json:"names"`
	// Applied holds the point sent for each index, after snap-to-grid.
	Applied []platform.Point `json:"applied"`
	// Failed lists indices the host refused, in handle order.
	Failed []IndexError `json:"failed,omitempty"`
}

// BatchRepositioner moves many icons with as few host mutations as possible.
type BatchRepositioner struct {
	registry *Registry
}

// Batch returns a repositioner bound to the session's registry.
func (s *Session) Batch() *BatchRepositioner {
	return &BatchRepositioner{registry: s.registry}
}

// Reposition moves handles[i] to points[i].
//
// Every precondition is checked before anything moves: equal lengths, every
// handle current, every point inside the desktop. With snap-to-grid on, each
// point is moved to the nearest spacing multiple that stays on the desktop.
// The whole set goes to the host in one call; if that call fails each pair
// is retried alone so the rest still land, and the refused indices come
// back in a *BatchError. The generation is retired once anything was sent.
func (b *BatchRepositioner) Reposition(handles []*IconHandle, points []platform.Point) (*BatchResult, error) {
	r := b.registry
	s := r.session
	release, err := s.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	if len(handles) != len(points) {
		return nil, wrap(ErrLengthMismatch, fmt.Errorf("%d handles, %d points", len(handles), len(points)))
	}
	for i, h := range handles {
		if !r.current(h) {
			return nil, &PointError{Index: i, Point: points[i], Err: ErrStaleHandle}
		}
	}
	if len(handles) == 0 {
		return &BatchResult{}, nil
	}

	var (
		res     platform.Size
		spacing platform.Size
		flags   platform.FolderFlags
	)
	if err := s.call(func(surface platform.Surface) error {
		var err error
		if res, err = surface.Resolution(); err != nil {
			return err
		}
		if flags, err = surface.FolderFlags(); err != nil {
			return err
		}
		if flags.SnapToGrid {
			spacing, err = surface.Spacing()
		}
		return err
	}); err != nil {
		return nil, err
	}

	for i, p := range points {
		if !res.Contains(p) {
			return nil, &PointError{Index: i, Point: p, Err: ErrOutOfBounds}
		}
	}

	targets := make([]platform.Point, len(points))
	copy(targets, points)
	if flags.SnapToGrid {
		grid := tiling.Grid{CellWidth: spacing.Width, CellHeight: spacing.Height, Width: res.Width, Height: res.Height}
		for i, p := range targets {
			targets[i].X, targets[i].Y = grid.Snap(p.X, p.Y)
		}
	}

	ids := make([]platform.ItemID, len(handles))
	names := make([]string, len(handles))
	for i, h := range handles {
		ids[i] = h.record.ID
		names[i] = h.record.Name
	}

	var failed []IndexError
	err = s.call(func(surface platform.Surface) error {
		batchErr := surface.PositionItems(ids, targets)
		if batchErr == nil {
			return nil
		}
		s.logger.Warn("batch: host rejected batch, applying pairs individually", "count", len(ids), "error", batchErr)
		for i := range ids {
			if err := surface.PositionItems(ids[i:i+1], targets[i:i+1]); err != nil {
				failed = append(failed, IndexError{Index: i, Err: err})
			}
		}
		return nil
	})
	r.invalidate()

	if err != nil {
		s.actions.Log(actionlog.ActionBatch, s.id, err, map[string]any{"count": len(ids)})
		return nil, err
	}

	s.actions.Log(actionlog.ActionBatch, s.id, nil, map[string]any{
		"count":  len(ids),
		"failed": len(failed),
		"snap":   flags.SnapToGrid,
	})
	result := &BatchResult{Names: names, Applied: targets, Failed: failed}
	if len(failed) > 0 {
		return result, &BatchError{Failed: failed}
	}
	return result, nil
}
