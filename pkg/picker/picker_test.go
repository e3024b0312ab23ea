package picker_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	canopy "github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/picker"
)

func newEngine(t *testing.T, opts ...canopy.Option) *canopy.Engine {
	t.Helper()
	eng, err := canopy.New([]domain.OptionNode{
		{ID: "1", Label: "Fruit", Children: []domain.OptionNode{
			{ID: "2", Label: "Apple"},
			{ID: "3", Label: "Banana"},
		}},
		{ID: "4", Label: "Dairy"},
	}, opts...)
	require.NoError(t, err)
	return eng
}

// script runs the picker against a fixed command sequence.
func script(t *testing.T, eng *canopy.Engine, commands []string, opts ...picker.Option) (*domain.Selection, string) {
	t.Helper()

	in := strings.NewReader(strings.Join(commands, "\n") + "\n")
	var out bytes.Buffer
	opts = append(opts, picker.WithHandler(picker.NewTextHandler(in, &out)))

	sel, err := picker.New(eng, opts...).Run(context.Background())
	require.NoError(t, err)
	return sel, out.String()
}

func TestPicker_SubtreeSelection(t *testing.T) {
	sel, out := script(t, newEngine(t), []string{"1", "done"})

	assert.Equal(t, []string{"1", "2", "3"}, sel.IDs)
	assert.Contains(t, out, "Apple")
	assert.Contains(t, out, "Selected: Fruit, Apple, Banana")
}

func TestPicker_SearchFiltersRows(t *testing.T) {
	_, out := script(t, newEngine(t), []string{"/an", "done"})

	assert.Contains(t, out, "Filter: /an")
	// After filtering, Banana and its ancestor Fruit stay; Dairy and Apple drop.
	frames := strings.Split(out, "Filter: /an")
	filtered := frames[len(frames)-1]
	assert.Contains(t, filtered, "Banana")
	assert.NotContains(t, filtered, "Dairy")
	assert.NotContains(t, filtered, "Apple")
}

func TestPicker_CollapseHidesChildren(t *testing.T) {
	// Collapse row 1 (Fruit), then select it while collapsed: the whole
	// subtree still toggles because selection ignores presentation state.
	sel, out := script(t, newEngine(t), []string{"e 1", "1", "done"})

	assert.Equal(t, []string{"1", "2", "3"}, sel.IDs)
	assert.Contains(t, out, "+ [")
}

func TestPicker_SingleModeClosesOnSelect(t *testing.T) {
	// No explicit "done": the single-mode activation closes the panel.
	sel, _ := script(t, newEngine(t, canopy.WithMode(domain.ModeSingle)), []string{"4"})

	assert.Equal(t, []string{"4"}, sel.IDs)
}

func TestPicker_PersistsAndRestores(t *testing.T) {
	store := memory.NewStore()
	opts := []picker.Option{picker.WithStore(store), picker.WithSessionID("sess-1")}

	sel, _ := script(t, newEngine(t), []string{"4", "done"}, opts...)
	assert.Equal(t, []string{"4"}, sel.IDs)

	saved, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, saved.IDs)

	// A fresh run restores the stored selection before any input.
	sel, out := script(t, newEngine(t), []string{"done"}, opts...)
	assert.Equal(t, []string{"4"}, sel.IDs)
	assert.Contains(t, out, "Selected: Dairy")
}

func TestPicker_UnknownCommandIsReported(t *testing.T) {
	_, out := script(t, newEngine(t), []string{"99", "bogus", "done"})

	assert.Contains(t, out, "unknown command")
}
