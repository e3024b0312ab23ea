package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// SelectionService defines the stateless core interface consumed by remote
// adapters (HTTP, MCP). The adapter owns the session round-trip: it loads the
// canonical selection, asks the service to compute and merge the change, and
// persists the result.
type SelectionService interface {
	// Status derives the display state of one node for a given selection and search term.
	Status(sel *domain.Selection, nodeID, term string) domain.DisplayStatus

	// Activate computes the activation delta for nodeID, merges it, and
	// returns the new canonical selection alongside the authoritative delta.
	// A nil delta means the activation was a no-op (single-mode re-click).
	Activate(ctx context.Context, sel *domain.Selection, nodeID string) (*domain.Selection, *domain.Delta, error)

	// Merge applies a host-supplied delta to a selection and returns the new
	// canonical value. The input selection is not mutated.
	Merge(sel *domain.Selection, delta *domain.Delta) *domain.Selection

	// Visible returns the ids whose nodes render under the given search term.
	Visible(term string) []string

	// SelectedLabel projects the selection into its display summary.
	SelectedLabel(sel *domain.Selection) string

	// Inspect returns the option tree for introspection.
	Inspect() []domain.OptionNode

	// DefaultMode returns the tree-wide selection mode.
	DefaultMode() domain.SelectionMode
}
