package index

import (
	"sort"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
)

// Entry is the flattened view of one option node.
type Entry struct {
	ID    string
	Label string

	// Mode is the effective mode, after inheritance resolution.
	Mode domain.SelectionMode

	// Parent is the id of the owning node, empty for roots.
	Parent string

	// Children holds direct child ids in document order.
	Children []string

	// Descendants holds every id in the subtree below this node, in
	// depth-first order, excluding the node itself.
	Descendants []string

	// Order is the first-occurrence position in a depth-first traversal.
	Order int

	Depth int
}

// Index is a flat, read-only view over an option tree.
// It is built once per tree and shared by the engine and the controller;
// effective modes, descendant sets and traversal order are resolved eagerly
// so every later lookup is a map access.
type Index struct {
	entries map[string]*Entry
	order   []string
	roots   []string
	nodes   []domain.OptionNode
	mode    domain.SelectionMode
}

// Build constructs an index for nodes with the given tree-wide default mode.
// An empty defaultMode resolves to multiple.
//
// Duplicate ids are a precondition violation (see the validator); Build keeps
// the first occurrence and ignores later ones so that lookups stay
// deterministic and nothing crashes downstream.
func Build(nodes []domain.OptionNode, defaultMode domain.SelectionMode) *Index {
	if defaultMode == domain.ModeInherit {
		defaultMode = domain.ModeMultiple
	}

	ix := &Index{
		entries: make(map[string]*Entry),
		nodes:   nodes,
		mode:    defaultMode,
	}
	ix.build(nodes, "", defaultMode, 0)
	return ix
}

// build walks one sibling level. The inherited mode is the parent's effective
// mode, so overrides propagate to entire subtrees.
func (ix *Index) build(nodes []domain.OptionNode, parent string, inherited domain.SelectionMode, depth int) []string {
	ids := make([]string, 0, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		if _, dup := ix.entries[node.ID]; dup {
			continue
		}

		mode := inherited
		if node.Mode != domain.ModeInherit && node.Mode.Valid() {
			mode = node.Mode
		}

		entry := &Entry{
			ID:     node.ID,
			Label:  node.Label,
			Mode:   mode,
			Parent: parent,
			Order:  len(ix.order),
			Depth:  depth,
		}
		ix.entries[node.ID] = entry
		ix.order = append(ix.order, node.ID)
		if parent == "" {
			ix.roots = append(ix.roots, node.ID)
		}
		ids = append(ids, node.ID)

		entry.Children = ix.build(node.Children, node.ID, mode, depth+1)
		entry.Descendants = ix.collectDescendants(entry.Children)
	}
	return ids
}

func (ix *Index) collectDescendants(children []string) []string {
	var out []string
	for _, id := range children {
		out = append(out, id)
		out = append(out, ix.entries[id].Descendants...)
	}
	return out
}

// Entry returns the flattened entry for id.
func (ix *Index) Entry(id string) (*Entry, bool) {
	e, ok := ix.entries[id]
	return e, ok
}

// Len returns the total number of indexed nodes.
func (ix *Index) Len() int {
	return len(ix.order)
}

// Roots returns the top-level ids in document order.
func (ix *Index) Roots() []string {
	return ix.roots
}

// IDs returns every indexed id in depth-first order.
func (ix *Index) IDs() []string {
	return ix.order
}

// Nodes returns the underlying option tree. Callers must treat it as read-only.
func (ix *Index) Nodes() []domain.OptionNode {
	return ix.nodes
}

// DefaultMode returns the resolved tree-wide default mode.
func (ix *Index) DefaultMode() domain.SelectionMode {
	return ix.mode
}

// Label resolves an id to its display label.
// Unknown ids resolve to the empty string rather than failing, since a
// selection can outlive the tree it was made against.
func (ix *Index) Label(id string) string {
	if e, ok := ix.entries[id]; ok {
		return e.Label
	}
	return ""
}

// Descendants returns the descendant id set of id (excluding id itself),
// or nil for unknown ids.
func (ix *Index) Descendants(id string) []string {
	if e, ok := ix.entries[id]; ok {
		return e.Descendants
	}
	return nil
}

// Ancestors returns the chain of ancestor ids from id's parent up to its root.
func (ix *Index) Ancestors(id string) []string {
	var out []string
	e, ok := ix.entries[id]
	for ok && e.Parent != "" {
		out = append(out, e.Parent)
		e, ok = ix.entries[e.Parent]
	}
	return out
}

// SortCanonical orders ids by their first-occurrence position in the tree's
// depth-first traversal, keeping display output stable across merges.
// Ids unknown to the tree keep their relative order after all known ids.
func (ix *Index) SortCanonical(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		oi, iKnown := ix.entries[ids[i]]
		oj, jKnown := ix.entries[ids[j]]
		switch {
		case iKnown && jKnown:
			return oi.Order < oj.Order
		case iKnown:
			return true
		default:
			return false
		}
	})
}

// Matches reports whether id's own label contains term (case-insensitive).
// An empty term matches everything.
func (ix *Index) Matches(id, term string) bool {
	if term == "" {
		return true
	}
	e, ok := ix.entries[id]
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(e.Label), strings.ToLower(term))
}

// Visible reports whether id should render under the given search term:
// the node's own label matches, or any descendant's label matches, so the
// path down to a match stays on screen.
func (ix *Index) Visible(id, term string) bool {
	if term == "" {
		return true
	}
	if ix.Matches(id, term) {
		return true
	}
	e, ok := ix.entries[id]
	if !ok {
		return false
	}
	for _, d := range e.Descendants {
		if ix.Matches(d, term) {
			return true
		}
	}
	return false
}
