package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/canopy/internal/index"
	"github.com/aretw0/canopy/pkg/domain"
)

// Engine derives display state and computes activation deltas for option
// nodes. It is a pure function layer over the tree index: every method takes
// the canonical selection as input and never mutates it. Merging a delta back
// into the canonical value is the controller's job.
type Engine struct {
	ix     *index.Index
	logger *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger for activation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine over a built index.
func New(ix *index.Index, opts ...Option) *Engine {
	e := &Engine{
		ix:     ix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Index exposes the underlying tree index to sibling packages.
func (e *Engine) Index() *index.Index {
	return e.ix
}

// Checked reports whether the node renders as selected.
// In multiple mode this is plain set membership; in single mode the node is
// checked iff it is the one held value.
func (e *Engine) Checked(sel *domain.Selection, id string) bool {
	entry, ok := e.ix.Entry(id)
	if !ok {
		return false
	}
	if entry.Mode == domain.ModeSingle {
		current, ok := sel.Single()
		return ok && current == id
	}
	return sel.Has(id)
}

// Indeterminate reports the tri-state checkbox condition: some but not all
// of the node's descendants are selected. It is always false for leaves,
// for checked nodes, and in single mode.
func (e *Engine) Indeterminate(sel *domain.Selection, id string) bool {
	entry, ok := e.ix.Entry(id)
	if !ok || entry.Mode != domain.ModeMultiple {
		return false
	}
	if len(entry.Descendants) == 0 || e.Checked(sel, id) {
		return false
	}

	selected := 0
	for _, d := range entry.Descendants {
		if sel.Has(d) {
			selected++
		}
	}
	return selected > 0 && selected < len(entry.Descendants)
}

// Status derives the full display state of a node for one render pass.
func (e *Engine) Status(sel *domain.Selection, id, term string) domain.DisplayStatus {
	return domain.DisplayStatus{
		Checked:       e.Checked(sel, id),
		Indeterminate: e.Indeterminate(sel, id),
		Visible:       e.ix.Visible(id, term),
	}
}

// Activate computes the delta for a user activation of the given node.
//
// Multiple mode toggles the node together with its entire descendant set:
// either everything becomes selected or everything becomes deselected,
// never a partial transition. Single mode replaces the current value and
// enumerates the replacement in Delta.Remove, keeping add/remove disjoint.
//
// Activating an already-selected single-mode node is a no-op: both return
// values are nil and no event must be emitted.
func (e *Engine) Activate(sel *domain.Selection, id string) (*domain.Delta, *domain.SelectEvent, error) {
	entry, ok := e.ix.Entry(id)
	if !ok {
		return nil, nil, fmt.Errorf("activate %q: %w", id, domain.ErrNodeNotFound)
	}

	if entry.Mode == domain.ModeSingle {
		if e.Checked(sel, id) {
			e.logger.Debug("activation ignored, already selected", "node_id", id)
			return nil, nil, nil
		}

		delta := &domain.Delta{Add: []string{id}}
		for _, cur := range sel.IDs {
			if cur != id {
				delta.Remove = append(delta.Remove, cur)
			}
		}
		event := &domain.SelectEvent{ID: id, IDs: []string{id}, IsSelected: true}
		e.logger.Debug("single activation", "node_id", id)
		return delta, event, nil
	}

	target := append([]string{id}, entry.Descendants...)
	shouldSelect := !e.Checked(sel, id)

	delta := &domain.Delta{}
	if shouldSelect {
		delta.Add = target
	} else {
		delta.Remove = target
	}
	event := &domain.SelectEvent{ID: id, IDs: target, IsSelected: shouldSelect}

	e.logger.Debug("multiple activation",
		"node_id", id,
		"selected", shouldSelect,
		"affected", len(target),
	)
	return delta, event, nil
}

// VisibleIDs returns, in depth-first order, every id whose node should render
// under the given search term.
func (e *Engine) VisibleIDs(term string) []string {
	if term == "" {
		return e.ix.IDs()
	}
	var out []string
	for _, id := range e.ix.IDs() {
		if e.ix.Visible(id, term) {
			out = append(out, id)
		}
	}
	return out
}
