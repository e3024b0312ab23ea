// Package graph renders the option tree as Mermaid flowchart syntax for
// documentation and debugging.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
)

// TreeOverlay contains dynamic selection state to visualize on the tree.
type TreeOverlay struct {
	SelectedIDs     []string
	IndeterminateID []string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from the option
// tree. It applies semantic styling:
// - Single-mode branch: ((Circle))
// - Branch with children: [Rectangle]
// - Leaf: ([Stadium])
// It also applies overlay styles (Selected/Indeterminate) if provided.
func GenerateMermaid(nodes []domain.OptionNode, overlay *TreeOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var emit func(nodes []domain.OptionNode, parent string)
	emit = func(nodes []domain.OptionNode, parent string) {
		for _, node := range nodes {
			safeID := sanitizeMermaidID(node.ID)

			// Node Shape
			opener, closer := "([", "])" // Leaf
			switch {
			case node.Mode == domain.ModeSingle:
				opener, closer = "((", "))" // Single-mode branch
			case len(node.Children) > 0:
				opener, closer = "[", "]" // Branch
			}

			safeLabel := strings.ReplaceAll(node.Label, "\"", "'")
			sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, safeLabel, closer))

			if parent != "" {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", parent, safeID))
			}

			emit(node.Children, safeID)
		}
	}
	emit(nodes, "")

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef selected fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef indeterminate fill:#fef9c3,stroke:#ca8a04,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.SelectedIDs {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s selected;\n", safeID))
			}
		}
		for _, id := range overlay.IndeterminateID {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s indeterminate;\n", safeID))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
