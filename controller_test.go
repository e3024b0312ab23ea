package canopy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// fakeWatcher records subscription lifecycle for outside-dismiss detection.
type fakeWatcher struct {
	onDismiss func()
	watches   int
	releases  int
	fail      bool
}

func (w *fakeWatcher) Watch(ctx context.Context, onDismiss func()) (ports.ReleaseFunc, error) {
	if w.fail {
		return nil, errors.New("no input surface")
	}
	w.watches++
	w.onDismiss = onDismiss
	return func() { w.releases++ }, nil
}

func TestController_OwnsCanonicalValue(t *testing.T) {
	eng, err := canopy.New(fruitTree())
	assert.NoError(t, err)
	ctx := context.Background()

	ctl := eng.NewController()
	assert.False(t, ctl.HasSelection())

	delta, err := ctl.Activate(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, delta.Add)
	assert.Equal(t, []string{"1", "2", "3"}, ctl.IDs())
	assert.Equal(t, "Fruit, Apple, Banana", ctl.SelectedLabel())

	// Deselecting a child leaves siblings selected and the parent repaired.
	_, err = ctl.Activate(ctx, "2")
	assert.NoError(t, err)
	assert.Equal(t, []string{"3"}, ctl.IDs())
	assert.True(t, ctl.Status("1").Indeterminate)
}

func TestController_InitialSelectionAndSet(t *testing.T) {
	eng, _ := canopy.New(fruitTree())

	ctl := eng.NewController(canopy.WithInitialSelection([]string{"3", "2"}))
	assert.Equal(t, []string{"2", "3"}, ctl.IDs())

	// Defensive coercion: a non-list host value becomes an empty set.
	ctl.SetSelection(map[string]any{"bogus": true})
	assert.False(t, ctl.HasSelection())
}

func TestController_SearchDrivesVisibility(t *testing.T) {
	eng, _ := canopy.New(fruitTree())
	ctl := eng.NewController()

	ctl.SetSearch("ban")
	assert.Equal(t, "ban", ctl.Search())
	assert.Equal(t, []string{"1", "3"}, ctl.VisibleIDs())
	assert.True(t, ctl.Status("1").Visible)
	assert.False(t, ctl.Status("2").Visible)

	ctl.SetSearch("")
	assert.Equal(t, []string{"1", "2", "3"}, ctl.VisibleIDs())
}

func TestController_DismissSubscriptionLifecycle(t *testing.T) {
	eng, _ := canopy.New(fruitTree())
	watcher := &fakeWatcher{}
	ctx := context.Background()

	ctl := eng.NewController(canopy.WithDismissWatcher(watcher))

	assert.NoError(t, ctl.Open(ctx))
	assert.True(t, ctl.IsOpen())
	assert.Equal(t, 1, watcher.watches)

	// Outside interaction closes the panel and releases the subscription.
	watcher.onDismiss()
	assert.False(t, ctl.IsOpen())
	assert.Equal(t, 1, watcher.releases)

	// Re-opening acquires a fresh subscription.
	assert.NoError(t, ctl.Open(ctx))
	ctl.Close(ctx)
	assert.Equal(t, 2, watcher.releases)

	// Teardown after close must not double-release.
	ctl.Teardown()
	assert.Equal(t, 2, watcher.releases)
}

func TestController_OpenFailureLeavesNothingRegistered(t *testing.T) {
	eng, _ := canopy.New(fruitTree())
	watcher := &fakeWatcher{fail: true}
	ctl := eng.NewController(canopy.WithDismissWatcher(watcher))

	err := ctl.Open(context.Background())
	assert.Error(t, err)
	assert.False(t, ctl.IsOpen())
	assert.Equal(t, 0, watcher.watches)
}

func TestController_SingleModeClosesOnSelect(t *testing.T) {
	eng, _ := canopy.New(fruitTree(), canopy.WithMode(domain.ModeSingle))
	watcher := &fakeWatcher{}
	ctx := context.Background()

	ctl := eng.NewController(canopy.WithDismissWatcher(watcher))
	assert.NoError(t, ctl.Open(ctx))

	_, err := ctl.Activate(ctx, "2")
	assert.NoError(t, err)
	assert.False(t, ctl.IsOpen())
	assert.Equal(t, 1, watcher.releases)

	// Re-clicking the selected value is a no-op: the panel must not
	// close-then-open or emit anything.
	assert.NoError(t, ctl.Open(ctx))
	_, err = ctl.Activate(ctx, "2")
	assert.NoError(t, err)
	assert.True(t, ctl.IsOpen())
	ctl.Teardown()
}
