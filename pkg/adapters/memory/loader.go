package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/canopy/internal/validator"
	"github.com/aretw0/canopy/pkg/domain"
)

// Loader implements ports.TreeLoader from an in-memory option tree.
type Loader struct {
	nodes []domain.OptionNode
}

// NewFromNodes creates a new Loader from domain objects.
// The tree is validated up front, improving DX for tests.
func NewFromNodes(nodes ...domain.OptionNode) (*Loader, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("option tree is empty")
	}
	if err := validator.ValidateTree(nodes); err != nil {
		return nil, fmt.Errorf("invalid option tree: %w", err)
	}
	return &Loader{nodes: nodes}, nil
}

// Load returns the root-level option nodes in the order they were provided.
func (l *Loader) Load(ctx context.Context) ([]domain.OptionNode, error) {
	return l.nodes, nil
}
