package desktop

import (
	"sync/atomic"

	"github.com/1broseidon/deskctl/internal/actionlog"
	"github.com/1broseidon/deskctl/internal/platform"
)

// Icon is one record of a registry generation.
type Icon struct {
	// Index is the 1-based enumeration order.
	Index    int             `json:"index"`
	ID       platform.ItemID `json:"id"`
	Name     string          `json:"name"`
	Position platform.Point  `json:"position"`
}

// Registry holds the current generation of icon records for a session.
// Generations start at 1 on the first enumeration and only increase.
type Registry struct {
	session *Session

	generation atomic.Uint64
	populated  bool
	records    []Icon
}

// Current returns the current generation, or 0 before the first enumeration.
func (r *Registry) Current() uint64 {
	return r.generation.Load()
}

// Refresh enumerates the live surface into a new generation.
func (r *Registry) Refresh() ([]Icon, error) {
	release, err := r.session.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	if err := r.refresh(); err != nil {
		return nil, err
	}
	return append([]Icon(nil), r.records...), nil
}

// refresh requires the session guard.
func (r *Registry) refresh() error {
	var items []platform.Item
	err := r.session.call(func(s platform.Surface) error {
		var err error
		items, err = s.Items()
		return err
	})
	if err != nil {
		r.session.actions.Log(actionlog.ActionEnumerate, r.session.id, err, nil)
		return err
	}

	records := make([]Icon, len(items))
	for i, it := range items {
		records[i] = Icon{Index: i + 1, ID: it.ID, Name: it.Name, Position: it.Position}
	}
	gen := r.generation.Add(1)
	r.populated = true
	r.records = records

	r.session.logger.Debug("registry refreshed", "generation", gen, "icons", len(records))
	r.session.actions.Log(actionlog.ActionEnumerate, r.session.id, nil, map[string]any{
		"generation": gen,
		"icons":      len(records),
	})
	return nil
}

// ensure populates the registry if no generation is live. Requires the guard.
func (r *Registry) ensure() error {
	if r.populated {
		return nil
	}
	return r.refresh()
}

// handles mints handles for the current generation. Requires the guard.
func (r *Registry) handles() []*IconHandle {
	gen := r.generation.Load()
	out := make([]*IconHandle, len(r.records))
	for i, rec := range r.records {
		out[i] = &IconHandle{registry: r, generation: gen, record: rec}
	}
	return out
}

// Enumerate refreshes and calls fn for each icon in order, starting at index
// 1. fn runs outside the session guard, so it may use the handle it receives.
// A non-nil error from fn stops the iteration and is returned.
func (r *Registry) Enumerate(fn func(index int, h *IconHandle) error) error {
	release, err := r.session.enter()
	if err != nil {
		return err
	}
	if err := r.refresh(); err != nil {
		release()
		return err
	}
	handles := r.handles()
	release()

	for _, h := range handles {
		if err := fn(h.record.Index, h); err != nil {
			return err
		}
	}
	return nil
}

// Handles returns handles for the current generation, enumerating first if
// none exists.
func (r *Registry) Handles() ([]*IconHandle, error) {
	release, err := r.session.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	if err := r.ensure(); err != nil {
		return nil, err
	}
	return r.handles(), nil
}

// ByName returns the first icon in generation order whose display name
// equals name.
func (r *Registry) ByName(name string) (*IconHandle, bool, error) {
	release, err := r.session.enter()
	if err != nil {
		return nil, false, err
	}
	defer release()

	if err := r.ensure(); err != nil {
		return nil, false, err
	}
	return r.byName(name)
}

func (r *Registry) byName(name string) (*IconHandle, bool, error) {
	for _, rec := range r.records {
		if rec.Name == name {
			return &IconHandle{registry: r, generation: r.generation.Load(), record: rec}, true, nil
		}
	}
	return nil, false, nil
}

// Invalidate retires the current generation without enumerating.
func (r *Registry) Invalidate() error {
	release, err := r.session.enter()
	if err != nil {
		return err
	}
	defer release()
	r.invalidate()
	return nil
}

func (r *Registry) invalidate() {
	if !r.populated {
		return
	}
	r.generation.Add(1)
	r.populated = false
	r.records = nil
}

// drop is called on session close.
func (r *Registry) drop() {
	r.populated = false
	r.records = nil
}

// current reports whether h belongs to the live generation. Requires the guard.
func (r *Registry) current(h *IconHandle) bool {
	return h != nil && h.registry == r && r.populated && h.generation == r.generation.Load()
}
