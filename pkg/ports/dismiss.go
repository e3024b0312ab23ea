package ports

import "context"

// ReleaseFunc deregisters a dismiss subscription. Calling it more than once
// is safe; implementations must make the second call a no-op.
type ReleaseFunc func()

// DismissWatcher is the scoped subscription used for outside-interaction
// detection while the dropdown panel is open. The controller acquires the
// subscription on open and guarantees the release on every exit path
// (close, teardown, failed open), so implementations never leak a handler.
type DismissWatcher interface {
	// Watch registers onDismiss to run when an interaction outside the
	// widget occurs. It returns the release for this one subscription.
	Watch(ctx context.Context, onDismiss func()) (ReleaseFunc, error)
}
