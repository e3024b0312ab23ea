package domain

// SelectionMode defines how activations behave inside a subtree.
type SelectionMode string

const (
	// ModeSingle allows at most one selected option; activating a node replaces the value.
	ModeSingle SelectionMode = "single"
	// ModeMultiple allows any number of selected options, including whole subtrees at once.
	ModeMultiple SelectionMode = "multiple"
	// ModeInherit defers to the nearest ancestor override, or the tree-wide default.
	ModeInherit SelectionMode = ""
)

// OptionNode represents one entry in the option hierarchy.
// A node owns its children; the same ID must not appear twice anywhere in the tree,
// since the flat selection value and the lookup index match by ID equality.
type OptionNode struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`

	// Mode overrides the selection behavior for this node's subtree.
	// Empty means inherited from the nearest ancestor override (or the tree default).
	Mode SelectionMode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Children holds the ordered subtree below this node.
	Children []OptionNode `json:"children,omitempty" yaml:"children,omitempty"`

	// Metadata allows for extensible key-value pairs (icons, host hints, etc).
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Valid reports whether m is a recognized mode value.
func (m SelectionMode) Valid() bool {
	return m == ModeSingle || m == ModeMultiple || m == ModeInherit
}

// Walk traverses nodes depth-first in document order.
// The callback receives the node, its parent (nil for roots) and its depth.
// Returning false stops the traversal.
func Walk(nodes []OptionNode, fn func(node *OptionNode, parent *OptionNode, depth int) bool) {
	walk(nodes, nil, 0, fn)
}

func walk(nodes []OptionNode, parent *OptionNode, depth int, fn func(*OptionNode, *OptionNode, int) bool) bool {
	for i := range nodes {
		node := &nodes[i]
		if !fn(node, parent, depth) {
			return false
		}
		if !walk(node.Children, node, depth+1, fn) {
			return false
		}
	}
	return true
}

// DisplayStatus is the derived presentation state for one node.
// It is recomputed from the canonical selection on every pass, never cached.
type DisplayStatus struct {
	Checked       bool `json:"checked"`
	Indeterminate bool `json:"indeterminate"`
	Visible       bool `json:"visible"`
}
