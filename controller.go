package canopy

import (
	"context"
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Controller owns the canonical selection value for a local, in-process host.
// It receives activation deltas from the engine, merges each one atomically,
// and republishes the new flat value; every node status is re-derived from
// that value on the next render pass. It also tracks the ephemeral UI state
// the host delegates to the library: dropdown open/close and the search term.
//
// Following the widget's single-input-loop model, a Controller is not safe
// for concurrent use; all calls must come from one dispatch goroutine.
// Remote hosts that need cross-request ordering use session.Manager instead.
type Controller struct {
	eng     *Engine
	sel     *domain.Selection
	term    string
	open    bool
	watcher ports.DismissWatcher
	release ports.ReleaseFunc
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithDismissWatcher wires outside-interaction detection: the subscription is
// acquired when the dropdown opens and released when it closes or the
// controller tears down, on every exit path.
func WithDismissWatcher(w ports.DismissWatcher) ControllerOption {
	return func(c *Controller) {
		c.watcher = w
	}
}

// WithInitialSelection seeds the canonical value from a host-supplied shape.
func WithInitialSelection(value any) ControllerOption {
	return func(c *Controller) {
		c.sel = c.eng.CoerceSelection(value)
	}
}

// NewController creates a stateful controller bound to the engine's tree.
func (e *Engine) NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		eng: e,
		sel: e.NewSelection(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate processes a user activation of nodeID: the engine computes the
// delta, the controller merges it into the canonical value as one atomic
// step. It returns the authoritative delta, or nil when the activation was a
// no-op. Selecting in single mode closes the dropdown as a side effect.
func (c *Controller) Activate(ctx context.Context, nodeID string) (*domain.Delta, error) {
	merged, delta, err := c.eng.Activate(ctx, c.sel, nodeID)
	if err != nil {
		return nil, err
	}
	if delta == nil {
		return nil, nil
	}
	c.sel = merged

	if entry, ok := c.eng.ix.Entry(nodeID); ok && entry.Mode == domain.ModeSingle {
		c.Close(ctx)
	}
	return delta, nil
}

// Selection returns a copy of the canonical selection value.
func (c *Controller) Selection() *domain.Selection {
	return c.sel.Clone()
}

// IDs returns the selected ids in stable option order.
func (c *Controller) IDs() []string {
	return append([]string(nil), c.sel.IDs...)
}

// SetSelection replaces the canonical value from a host-supplied shape,
// coercing defensively (a non-list value in multiple mode becomes an empty
// set rather than an error).
func (c *Controller) SetSelection(value any) {
	c.sel = c.eng.CoerceSelection(value)
}

// HasSelection reports whether anything is selected.
func (c *Controller) HasSelection() bool {
	return c.eng.HasSelection(c.sel)
}

// SelectedLabel projects the current selection into its display summary.
func (c *Controller) SelectedLabel() string {
	return c.eng.SelectedLabel(c.sel)
}

// Status derives the display state of a node against the current selection
// and search term.
func (c *Controller) Status(nodeID string) domain.DisplayStatus {
	return c.eng.Status(c.sel, nodeID, c.term)
}

// SetSearch updates the ephemeral search term used by visibility filtering.
func (c *Controller) SetSearch(term string) {
	c.term = term
}

// Search returns the active search term.
func (c *Controller) Search() string {
	return c.term
}

// VisibleIDs returns the ids rendering under the active search term.
func (c *Controller) VisibleIDs() []string {
	return c.eng.Visible(c.term)
}

// Open shows the dropdown panel and, when a dismiss watcher is configured,
// acquires the outside-interaction subscription. The subscription is the
// scoped resource of the open panel: a failed acquisition leaves the panel
// closed and nothing registered.
func (c *Controller) Open(ctx context.Context) error {
	if c.open {
		return nil
	}

	if c.watcher != nil {
		release, err := c.watcher.Watch(ctx, func() {
			c.Close(ctx)
		})
		if err != nil {
			return fmt.Errorf("failed to register dismiss watcher: %w", err)
		}
		c.release = release
	}

	c.open = true
	if c.eng.hooks.OnOpen != nil {
		c.eng.hooks.OnOpen(ctx)
	}
	return nil
}

// Close hides the dropdown panel and releases the dismiss subscription.
// Closing an already-closed controller is a no-op.
func (c *Controller) Close(ctx context.Context) {
	if !c.open {
		c.releaseDismiss()
		return
	}
	c.releaseDismiss()
	c.open = false
	if c.eng.hooks.OnClose != nil {
		c.eng.hooks.OnClose(ctx)
	}
}

// IsOpen reports whether the dropdown panel is showing.
func (c *Controller) IsOpen() bool {
	return c.open
}

// Teardown releases every held resource. It is safe to call multiple times
// and must run on every host exit path, including abnormal teardown.
func (c *Controller) Teardown() {
	c.releaseDismiss()
	c.open = false
}

// releaseDismiss clears the subscription before invoking it, so a re-entrant
// dismissal callback cannot double-release.
func (c *Controller) releaseDismiss() {
	if c.release == nil {
		return
	}
	release := c.release
	c.release = nil
	release()
}
