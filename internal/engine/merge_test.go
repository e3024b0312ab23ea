package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/canopy/pkg/domain"
)

func TestMerge_UnionAndSubtraction(t *testing.T) {
	eng := newEngine(t, domain.ModeMultiple)
	sel := &domain.Selection{Mode: domain.ModeMultiple, IDs: []string{"4"}}

	out := eng.Merge(sel, &domain.Delta{Add: []string{"2", "3"}})
	assert.Equal(t, []string{"2", "3", "4"}, out.IDs)

	out = eng.Merge(out, &domain.Delta{Remove: []string{"3"}})
	assert.Equal(t, []string{"2", "4"}, out.IDs)

	// Input is never mutated.
	assert.Equal(t, []string{"4"}, sel.IDs)
}

func TestMerge_PrunesAncestorsOfRemovedIDs(t *testing.T) {
	eng := newEngine(t, domain.ModeMultiple)

	// Whole Fruit subtree selected, then Apple individually deselected:
	// the stale parent id must leave the canonical set along with it.
	sel := &domain.Selection{Mode: domain.ModeMultiple, IDs: []string{"1", "2", "3"}}
	out := eng.Merge(sel, &domain.Delta{Remove: []string{"2"}})
	assert.Equal(t, []string{"3"}, out.IDs)

	// The parent now derives as indeterminate, not checked.
	assert.False(t, eng.Checked(out, "1"))
	assert.True(t, eng.Indeterminate(out, "1"))
}

func TestMerge_ExplicitAddWinsOverRepair(t *testing.T) {
	eng := newEngine(t, domain.ModeMultiple)
	sel := &domain.Selection{Mode: domain.ModeMultiple, IDs: []string{"1", "2", "3"}}

	out := eng.Merge(sel, &domain.Delta{Add: []string{"1"}, Remove: []string{"2"}})
	assert.Equal(t, []string{"1", "3"}, out.IDs)
}

func TestMerge_StableOptionOrder(t *testing.T) {
	eng := newEngine(t, domain.ModeMultiple)
	sel := domain.NewSelection(domain.ModeMultiple)

	// Adds arrive in click order; canonical order follows the tree.
	out := eng.Merge(sel, &domain.Delta{Add: []string{"4", "2"}})
	out = eng.Merge(out, &domain.Delta{Add: []string{"1"}})
	assert.Equal(t, []string{"1", "2", "4"}, out.IDs)
}

func TestMerge_UnknownIDsAreKeptGracefully(t *testing.T) {
	eng := newEngine(t, domain.ModeMultiple)

	// A selection can outlive the tree it was made against (tree swap).
	sel := &domain.Selection{Mode: domain.ModeMultiple, IDs: []string{"ghost", "2"}}
	out := eng.Merge(sel, &domain.Delta{Add: []string{"4"}})
	assert.Equal(t, []string{"2", "4", "ghost"}, out.IDs)
}

func TestMerge_NilSelection(t *testing.T) {
	eng := newEngine(t, domain.ModeMultiple)
	out := eng.Merge(nil, &domain.Delta{Add: []string{"2"}})
	assert.Equal(t, domain.ModeMultiple, out.Mode)
	assert.Equal(t, []string{"2"}, out.IDs)
}

func TestMerge_SingleReplacementSemantics(t *testing.T) {
	eng := newEngine(t, domain.ModeSingle)
	sel := &domain.Selection{Mode: domain.ModeSingle, IDs: []string{"4"}}

	out := eng.Merge(sel, &domain.Delta{Add: []string{"2"}, Remove: []string{"4"}})
	assert.Equal(t, []string{"2"}, out.IDs)

	// Remove-only delta clears the value to none.
	out = eng.Merge(out, &domain.Delta{Remove: []string{"2"}})
	assert.Empty(t, out.IDs)
}

func TestMerge_OrderIndependenceForDisjointSets(t *testing.T) {
	eng := newEngine(t, domain.ModeMultiple)
	sel := &domain.Selection{Mode: domain.ModeMultiple, IDs: []string{"2", "4"}}

	a := eng.Merge(sel, &domain.Delta{Add: []string{"3"}, Remove: []string{"4"}})
	b := eng.Merge(sel, &domain.Delta{Remove: []string{"4"}, Add: []string{"3"}})
	assert.Equal(t, a.IDs, b.IDs)
	assert.Equal(t, []string{"2", "3"}, a.IDs)
}
