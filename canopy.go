package canopy

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/canopy/internal/engine"
	"github.com/aretw0/canopy/internal/index"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// SummaryStyle selects how a multiple-mode selection is projected into the
// summary label. This is an explicit configuration choice, not a computed
// fallback.
type SummaryStyle string

const (
	// SummaryJoin lists each selected option's label, joined by the separator.
	SummaryJoin SummaryStyle = "join"
	// SummaryCount renders a count summary ("3 items selected").
	SummaryCount SummaryStyle = "count"
)

// Engine is the high-level entry point for the Canopy library.
// It wraps the internal selection engine and provides a stateless API:
// every method takes the canonical selection as input, so remote adapters
// (HTTP, MCP) can manage state externally or per-request. Local hosts that
// want the library to own the value use a Controller instead.
type Engine struct {
	ix      *index.Index
	core    *engine.Engine
	loader  ports.TreeLoader
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	mode    domain.SelectionMode
	summary SummaryStyle
	sep     string
	Name    string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithMode sets the tree-wide default selection mode (default: multiple).
func WithMode(mode domain.SelectionMode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithSummary selects the multiple-mode summary projection (default: join).
func WithSummary(style SummaryStyle) Option {
	return func(e *Engine) {
		e.summary = style
	}
}

// WithSeparator sets the separator used by the join summary (default: ", ").
func WithSeparator(sep string) Option {
	return func(e *Engine) {
		e.sep = sep
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithName sets a descriptive label used in log attributes.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes a new Canopy Engine over the given option tree.
// The tree is treated as immutable: the engine indexes it once and never
// mutates node identity or structure.
func New(nodes []domain.OptionNode, opts ...Option) (*Engine, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("option tree is empty")
	}
	return build(nodes, opts)
}

// NewFromLoader initializes an Engine by loading the option tree through a
// TreeLoader port (YAML file, memory, remote source).
func NewFromLoader(ctx context.Context, loader ports.TreeLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	nodes, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load option tree: %w", err)
	}
	eng, err := New(nodes, opts...)
	if err != nil {
		return nil, err
	}
	eng.loader = loader
	return eng, nil
}

func build(nodes []domain.OptionNode, opts []Option) (*Engine, error) {
	eng := &Engine{
		mode:    domain.ModeMultiple,
		summary: SummaryJoin,
		sep:     ", ",
	}
	for _, opt := range opts {
		opt(eng)
	}

	if !eng.mode.Valid() {
		return nil, fmt.Errorf("invalid selection mode %q", eng.mode)
	}

	// Ensure logger is initialized (so we don't pass nil down, which would
	// overwrite the core's default).
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("widget", eng.Name)
	}

	eng.ix = index.Build(nodes, eng.mode)
	eng.core = engine.New(eng.ix, engine.WithLogger(eng.logger))
	return eng, nil
}

// Compile-time check: Engine satisfies the service port consumed by adapters.
var _ ports.SelectionService = (*Engine)(nil)

// Status derives the display state of one node for a given selection and
// search term. Unknown ids report a zero status rather than failing.
func (e *Engine) Status(sel *domain.Selection, nodeID, term string) domain.DisplayStatus {
	return e.core.Status(sel, nodeID, term)
}

// Checked reports whether the node renders as selected.
func (e *Engine) Checked(sel *domain.Selection, nodeID string) bool {
	return e.core.Checked(sel, nodeID)
}

// Indeterminate reports the tri-state "some but not all descendants" condition.
func (e *Engine) Indeterminate(sel *domain.Selection, nodeID string) bool {
	return e.core.Indeterminate(sel, nodeID)
}

// Activate computes the delta for activating nodeID against sel, merges it,
// and returns the new canonical selection together with the authoritative
// delta. A nil delta means the activation was a no-op (re-clicking the
// already-selected single-mode value); in that case no event fires and the
// returned selection is an unchanged copy.
func (e *Engine) Activate(ctx context.Context, sel *domain.Selection, nodeID string) (*domain.Selection, *domain.Delta, error) {
	delta, event, err := e.core.Activate(sel, nodeID)
	if err != nil {
		return nil, nil, err
	}
	if delta == nil {
		return e.coerce(sel), nil, nil
	}

	merged := e.core.Merge(sel, delta)

	if e.hooks.OnSelect != nil {
		e.hooks.OnSelect(ctx, event)
	}
	if e.hooks.OnUpdate != nil {
		e.hooks.OnUpdate(ctx, &domain.UpdateEvent{Add: delta.Add, Remove: delta.Remove})
	}
	return merged, delta, nil
}

// Merge applies a host-supplied delta to a selection and returns the new
// canonical value. The input selection is not mutated.
func (e *Engine) Merge(sel *domain.Selection, delta *domain.Delta) *domain.Selection {
	return e.core.Merge(sel, delta)
}

// Visible returns, in depth-first order, the ids whose nodes should render
// under the given search term.
func (e *Engine) Visible(term string) []string {
	return e.core.VisibleIDs(term)
}

// HasSelection reports whether sel holds any value.
func (e *Engine) HasSelection(sel *domain.Selection) bool {
	return !sel.IsEmpty()
}

// Label resolves an id to its display label, or "" when the id is not part
// of the current tree.
func (e *Engine) Label(nodeID string) string {
	return e.ix.Label(nodeID)
}

// SelectedLabel projects a selection into its display summary.
// Single mode resolves the one selected id (empty string on a miss, never an
// error). Multiple mode renders either the joined labels or a count summary,
// depending on the configured SummaryStyle; ids that no longer resolve are
// skipped from the join.
func (e *Engine) SelectedLabel(sel *domain.Selection) string {
	if sel.IsEmpty() {
		return ""
	}

	if sel.Mode == domain.ModeSingle {
		id, _ := sel.Single()
		return e.ix.Label(id)
	}

	if e.summary == SummaryCount {
		if sel.Len() == 1 {
			return "1 item selected"
		}
		return fmt.Sprintf("%d items selected", sel.Len())
	}

	out := ""
	for _, id := range sel.IDs {
		label := e.ix.Label(id)
		if label == "" {
			continue
		}
		if out != "" {
			out += e.sep
		}
		out += label
	}
	return out
}

// Inspect returns the option tree for introspection and rendering.
// Callers must treat the returned nodes as read-only.
func (e *Engine) Inspect() []domain.OptionNode {
	return e.ix.Nodes()
}

// DefaultMode returns the tree-wide selection mode after defaulting.
func (e *Engine) DefaultMode() domain.SelectionMode {
	return e.ix.DefaultMode()
}

// Loader returns the tree loader the engine was built from, if any.
func (e *Engine) Loader() ports.TreeLoader {
	return e.loader
}

// NewSelection creates an empty canonical selection for this tree's mode.
func (e *Engine) NewSelection() *domain.Selection {
	return domain.NewSelection(e.ix.DefaultMode())
}

// CoerceSelection builds a canonical selection from an arbitrary
// host-supplied value (string, []string, JSON-decoded []any). Single mode
// keeps only the first id; multiple mode deduplicates and applies stable
// option order.
func (e *Engine) CoerceSelection(value any) *domain.Selection {
	ids := domain.CoerceIDs(value)
	sel := e.NewSelection()
	if len(ids) == 0 {
		return sel
	}
	if sel.Mode == domain.ModeSingle {
		sel.IDs = ids[:1]
		return sel
	}
	e.ix.SortCanonical(ids)
	sel.IDs = ids
	return sel
}

func (e *Engine) coerce(sel *domain.Selection) *domain.Selection {
	if sel == nil {
		return e.NewSelection()
	}
	return sel.Clone()
}
