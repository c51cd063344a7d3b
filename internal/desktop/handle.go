package desktop

import (
	"fmt"

	"github.com/1broseidon/deskctl/internal/actionlog"
	"github.com/1broseidon/deskctl/internal/platform"
)

// IconHandle refers to one icon of one registry generation. Once the
// generation is superseded every accessor fails with ErrStaleHandle.
type IconHandle struct {
	registry   *Registry
	generation uint64
	record     Icon
}

// Index returns the 1-based enumeration index.
func (h *IconHandle) Index() int { return h.record.Index }

// Generation returns the generation the handle was minted from.
func (h *IconHandle) Generation() uint64 { return h.generation }

// ID returns the backend item identity.
func (h *IconHandle) ID() platform.ItemID { return h.record.ID }

func (h *IconHandle) check() (release func(), err error) {
	if h == nil || h.registry == nil {
		return nil, ErrStaleHandle
	}
	release, err = h.registry.session.enter()
	if err != nil {
		return nil, err
	}
	if !h.registry.current(h) {
		release()
		return nil, wrap(ErrStaleHandle, fmt.Errorf("generation %d", h.generation))
	}
	return release, nil
}

// Position returns the position recorded at enumeration.
func (h *IconHandle) Position() (platform.Point, error) {
	release, err := h.check()
	if err != nil {
		return platform.Point{}, err
	}
	defer release()
	return h.record.Position, nil
}

// DisplayName returns the name recorded at enumeration.
func (h *IconHandle) DisplayName() (string, error) {
	release, err := h.check()
	if err != nil {
		return "", err
	}
	defer release()
	return h.record.Name, nil
}

// Reposition moves the icon to p. Snap-to-grid is left to the host. The
// generation is invalidated once the move has been attempted.
func (h *IconHandle) Reposition(p platform.Point) error {
	release, err := h.check()
	if err != nil {
		return err
	}
	defer release()

	r := h.registry
	s := r.session

	var res platform.Size
	if err := s.call(func(surface platform.Surface) error {
		var err error
		res, err = surface.Resolution()
		return err
	}); err != nil {
		return err
	}
	if !res.Contains(p) {
		return wrap(ErrOutOfBounds, fmt.Errorf("%s outside %dx%d", p, res.Width, res.Height))
	}

	err = s.call(func(surface platform.Surface) error {
		return surface.PositionItems([]platform.ItemID{h.record.ID}, []platform.Point{p})
	})
	r.invalidate()

	s.actions.Log(actionlog.ActionReposition, s.id, err, map[string]any{
		"name": h.record.Name,
		"to":   p.String(),
	})
	if err != nil {
		return fmt.Errorf("reposition %q: %w", h.record.Name, err)
	}
	return nil
}
