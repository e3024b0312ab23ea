package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// SelectionStore defines the interface for keeping the canonical selection of
// an in-flight widget session. Remote adapters (HTTP, MCP) are stateless per
// request, so the value between two user actions lives behind this port.
type SelectionStore interface {
	// Save persists the selection for a given session ID.
	Save(ctx context.Context, sessionID string, sel *domain.Selection) error

	// Load retrieves the selection for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Selection, error)

	// Delete removes the selection for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the active session IDs.
	List(ctx context.Context) ([]string, error)
}
