package picker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	canopy "github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Picker runs the interactive loop of the selection widget using provided IO.
// It owns host-local presentation state (expand/collapse) while the
// Controller owns the canonical selection.
type Picker struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for the selection.
	// If nil, the selection is ephemeral.
	Store     ports.SelectionStore
	SessionID string

	// Renderer transforms the summary line (e.g. markdown to ANSI).
	Renderer ContentRenderer

	engine    *canopy.Engine
	collapsed map[string]bool
}

// Option defines a functional option for configuring the Picker.
type Option func(*Picker)

// WithStore configures the SelectionStore for persistence.
func WithStore(store ports.SelectionStore) Option {
	return func(p *Picker) {
		p.Store = store
	}
}

// WithSessionID sets the session ID for persistence context.
// This is required if WithStore is used.
func WithSessionID(id string) Option {
	return func(p *Picker) {
		p.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Picker) {
		p.Logger = logger
	}
}

// WithHandler configures a custom IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(p *Picker) {
		p.Handler = handler
	}
}

// WithRenderer configures the content renderer (e.g. TUI, Markdown).
func WithRenderer(renderer ContentRenderer) Option {
	return func(p *Picker) {
		p.Renderer = renderer
	}
}

// New creates a Picker for the given engine.
func New(engine *canopy.Engine, opts ...Option) *Picker {
	p := &Picker{
		engine:    engine,
		collapsed: make(map[string]bool),
		Logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the interaction loop until the user confirms or quits.
// The final selection is returned; with a Store configured it is also
// persisted after every change.
func (p *Picker) Run(ctx context.Context) (*domain.Selection, error) {
	handler := p.resolveHandler()

	ctrlOpts := []canopy.ControllerOption{}
	if p.Store != nil && p.SessionID != "" {
		if sel, err := p.Store.Load(ctx, p.SessionID); err == nil {
			ctrlOpts = append(ctrlOpts, canopy.WithInitialSelection(sel.IDs))
			p.Logger.Debug("selection restored", "session_id", p.SessionID, "size", sel.Len())
		}
	}

	ctrl := p.engine.NewController(ctrlOpts...)
	defer ctrl.Teardown()

	if err := ctrl.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open picker: %w", err)
	}

	for ctrl.IsOpen() {
		view := p.buildView(ctrl)
		if err := handler.Output(ctx, view); err != nil {
			return nil, fmt.Errorf("output error: %w", err)
		}

		raw, err := handler.Input(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("input error: %w", err)
		}

		input, err := SanitizeInput(raw)
		if err != nil {
			if sysErr := handler.SystemOutput(ctx, fmt.Sprintf("input rejected: %v", err)); sysErr != nil {
				return nil, sysErr
			}
			continue
		}

		done, err := p.dispatch(ctx, ctrl, handler, view, input)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	ctrl.Close(ctx)
	return ctrl.Selection(), nil
}

// dispatch interprets one command. Returns done=true when the loop should end.
func (p *Picker) dispatch(ctx context.Context, ctrl *canopy.Controller, handler IOHandler, view View, input string) (bool, error) {
	switch {
	case input == "":
		return false, nil

	case input == "exit" || input == "quit" || input == "done":
		return true, nil

	case strings.HasPrefix(input, "/"):
		ctrl.SetSearch(strings.TrimPrefix(input, "/"))
		return false, nil

	case strings.HasPrefix(input, "e "):
		row, ok := view.row(strings.TrimSpace(strings.TrimPrefix(input, "e ")))
		if !ok || !row.HasChildren {
			return false, handler.SystemOutput(ctx, "nothing to expand there")
		}
		p.collapsed[row.ID] = !p.collapsed[row.ID]
		return false, nil

	default:
		row, ok := view.row(input)
		if !ok {
			return false, handler.SystemOutput(ctx, fmt.Sprintf("unknown command %q (row number, 'e N', '/term', 'done')", input))
		}

		delta, err := ctrl.Activate(ctx, row.ID)
		if err != nil {
			return false, handler.SystemOutput(ctx, fmt.Sprintf("activation failed: %v", err))
		}
		if delta == nil {
			p.Logger.Debug("activation was a no-op", "node_id", row.ID)
			return false, nil
		}

		p.Logger.Debug("delta applied", "node_id", row.ID, "add", len(delta.Add), "remove", len(delta.Remove))
		if err := p.persist(ctx, ctrl); err != nil {
			return false, err
		}
		// A single-mode activation closes the panel; the loop notices via IsOpen.
		return false, nil
	}
}

func (p *Picker) persist(ctx context.Context, ctrl *canopy.Controller) error {
	if p.Store == nil || p.SessionID == "" {
		return nil
	}
	if err := p.Store.Save(ctx, p.SessionID, ctrl.Selection()); err != nil {
		return fmt.Errorf("critical persistence error: %w", err)
	}
	p.Logger.Debug("selection saved", "session_id", p.SessionID)
	return nil
}

// buildView flattens the tree into indexed rows, honoring search visibility
// and host-local collapse state.
func (p *Picker) buildView(ctrl *canopy.Controller) View {
	view := View{
		Summary: ctrl.SelectedLabel(),
		Term:    ctrl.Search(),
		Open:    ctrl.IsOpen(),
	}
	if p.Renderer != nil && view.Summary != "" {
		if rendered, err := p.Renderer(view.Summary); err == nil {
			view.Summary = strings.TrimSpace(rendered)
		}
	}

	var flatten func(nodes []domain.OptionNode, depth int)
	flatten = func(nodes []domain.OptionNode, depth int) {
		for _, node := range nodes {
			status := ctrl.Status(node.ID)
			if !status.Visible {
				continue
			}
			view.Rows = append(view.Rows, Row{
				Index:       len(view.Rows) + 1,
				ID:          node.ID,
				Label:       node.Label,
				Depth:       depth,
				Status:      status,
				HasChildren: len(node.Children) > 0,
				Collapsed:   p.collapsed[node.ID],
			})
			if !p.collapsed[node.ID] {
				flatten(node.Children, depth+1)
			}
		}
	}
	flatten(p.engine.Inspect(), 0)
	return view
}

// row resolves a 1-based row number typed by the user.
func (v View) row(input string) (Row, bool) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(v.Rows) {
		return Row{}, false
	}
	return v.Rows[n-1], true
}

func (p *Picker) resolveHandler() IOHandler {
	if p.Handler != nil {
		return p.Handler
	}
	th := NewTextHandler(nil, nil)
	// Memoize so subsequent Run() calls reuse the same reader.
	p.Handler = th
	return th
}
