package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// TreeLoader defines how the widget retrieves its option tree.
// This decouples the core from the storage format (YAML file, memory, API).
type TreeLoader interface {
	// Load returns the root-level option nodes in document order.
	// The returned tree is treated as immutable by the core.
	Load(ctx context.Context) ([]domain.OptionNode, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying tree changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
