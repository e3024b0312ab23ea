package engine

import (
	"github.com/aretw0/canopy/pkg/domain"
)

// Merge applies a delta to the canonical selection and returns the new value.
// The input selection is never mutated; a nil selection is treated as empty
// (defensive coercion for hosts that pass nothing on the first action).
//
// Multiple mode computes (S ∪ add) \ remove as one atomic step, then repairs
// ancestors: whenever a descendant id is removed, every ancestor id of it is
// pruned from the set as well, so the external value never reports a parent
// as fully selected while its subtree has diverged. Explicit adds win over
// the repair. The result is kept in stable option order (first occurrence in
// a depth-first traversal); ids unknown to the tree sort after known ids.
//
// Single mode uses replacement semantics: the new value is the added id, and
// a remove-only delta clears the value to none.
func (e *Engine) Merge(sel *domain.Selection, delta *domain.Delta) *domain.Selection {
	if sel == nil {
		sel = domain.NewSelection(e.ix.DefaultMode())
	}
	out := sel.Clone()
	if delta.IsEmpty() {
		return out
	}

	d := &domain.Delta{
		Add:    append([]string(nil), delta.Add...),
		Remove: append([]string(nil), delta.Remove...),
	}
	d.Normalize()

	if out.Mode == domain.ModeSingle {
		switch {
		case len(d.Add) > 0:
			out.IDs = []string{d.Add[0]}
		case len(d.Remove) > 0:
			out.IDs = nil
		}
		return out
	}

	drop := make(map[string]bool, len(d.Remove))
	for _, id := range d.Remove {
		drop[id] = true
		for _, anc := range e.ix.Ancestors(id) {
			drop[anc] = true
		}
	}

	ids := make([]string, 0, len(out.IDs)+len(d.Add))
	for _, id := range out.IDs {
		if !drop[id] {
			ids = append(ids, id)
		}
	}
	for _, id := range d.Add {
		if !containsID(ids, id) {
			ids = append(ids, id)
		}
	}
	e.ix.SortCanonical(ids)

	if len(ids) == 0 {
		ids = nil
	}
	out.IDs = ids
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
