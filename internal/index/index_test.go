package index

import (
	"reflect"
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
)

func fixtureTree() []domain.OptionNode {
	return []domain.OptionNode{
		{
			ID: "fruit", Label: "Fruit",
			Children: []domain.OptionNode{
				{ID: "apple", Label: "Apple"},
				{ID: "banana", Label: "Banana"},
			},
		},
		{
			ID: "veg", Label: "Vegetables", Mode: domain.ModeSingle,
			Children: []domain.OptionNode{
				{
					ID: "roots", Label: "Root Vegetables",
					Children: []domain.OptionNode{
						{ID: "carrot", Label: "Carrot"},
						{ID: "beet", Label: "Beet"},
					},
				},
				{ID: "leafy", Label: "Leafy Greens", Mode: domain.ModeMultiple},
			},
		},
	}
}

func TestBuild_Descendants(t *testing.T) {
	ix := Build(fixtureTree(), domain.ModeMultiple)

	tests := []struct {
		id   string
		want []string
	}{
		{"fruit", []string{"apple", "banana"}},
		{"veg", []string{"roots", "carrot", "beet", "leafy"}},
		{"roots", []string{"carrot", "beet"}},
		{"apple", nil},
	}

	for _, tt := range tests {
		got := ix.Descendants(tt.id)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Descendants(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestBuild_EffectiveModeInheritance(t *testing.T) {
	ix := Build(fixtureTree(), domain.ModeMultiple)

	tests := []struct {
		id   string
		want domain.SelectionMode
	}{
		{"fruit", domain.ModeMultiple},  // tree default
		{"apple", domain.ModeMultiple},  // inherited from default
		{"veg", domain.ModeSingle},      // own override
		{"roots", domain.ModeSingle},    // inherited from veg
		{"carrot", domain.ModeSingle},   // inherited transitively
		{"leafy", domain.ModeMultiple},  // override inside a single subtree
	}

	for _, tt := range tests {
		e, ok := ix.Entry(tt.id)
		if !ok {
			t.Fatalf("Entry(%q) missing", tt.id)
		}
		if e.Mode != tt.want {
			t.Errorf("Mode(%q) = %q, want %q", tt.id, e.Mode, tt.want)
		}
	}
}

func TestBuild_AncestorsAndOrder(t *testing.T) {
	ix := Build(fixtureTree(), domain.ModeMultiple)

	anc := ix.Ancestors("carrot")
	if !reflect.DeepEqual(anc, []string{"roots", "veg"}) {
		t.Errorf("Ancestors(carrot) = %v", anc)
	}

	want := []string{"fruit", "apple", "banana", "veg", "roots", "carrot", "beet", "leafy"}
	if !reflect.DeepEqual(ix.IDs(), want) {
		t.Errorf("IDs() = %v, want %v", ix.IDs(), want)
	}
}

func TestSortCanonical(t *testing.T) {
	ix := Build(fixtureTree(), domain.ModeMultiple)

	ids := []string{"beet", "ghost-b", "apple", "veg", "ghost-a"}
	ix.SortCanonical(ids)

	// Known ids in depth-first order, unknown ids after, keeping their relative order.
	want := []string{"apple", "veg", "beet", "ghost-b", "ghost-a"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("SortCanonical = %v, want %v", ids, want)
	}
}

func TestVisibility(t *testing.T) {
	// Tree A(B, C): term "b" shows B (self match) and A (descendant match), not C.
	nodes := []domain.OptionNode{
		{ID: "a", Label: "A", Children: []domain.OptionNode{
			{ID: "b", Label: "B"},
			{ID: "c", Label: "C"},
		}},
	}
	ix := Build(nodes, domain.ModeMultiple)

	tests := []struct {
		id   string
		term string
		want bool
	}{
		{"b", "b", true},
		{"a", "b", true},
		{"c", "b", false},
		{"c", "", true},
		{"ghost", "b", false},
	}

	for _, tt := range tests {
		if got := ix.Visible(tt.id, tt.term); got != tt.want {
			t.Errorf("Visible(%q, %q) = %v, want %v", tt.id, tt.term, got, tt.want)
		}
	}
}

func TestLabelResolution_Miss(t *testing.T) {
	ix := Build(fixtureTree(), domain.ModeMultiple)
	if got := ix.Label("ghost"); got != "" {
		t.Errorf("Label(ghost) = %q, want empty", got)
	}
}

func TestBuild_DuplicateIDKeepsFirst(t *testing.T) {
	nodes := []domain.OptionNode{
		{ID: "x", Label: "First"},
		{ID: "x", Label: "Second"},
	}
	ix := Build(nodes, domain.ModeMultiple)

	if ix.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ix.Len())
	}
	if got := ix.Label("x"); got != "First" {
		t.Errorf("Label(x) = %q, want First", got)
	}
}
