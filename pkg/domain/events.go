package domain

import "context"

// EventType defines the category of the event.
type EventType string

const (
	EventSelect EventType = "select"
	EventUpdate EventType = "update"
	EventOpen   EventType = "open"
	EventClose  EventType = "close"
)

// SelectEvent describes a just-completed activation in terms of final state.
// It is informational (host-side analytics, logging); the UpdateEvent is the
// authoritative change description.
type SelectEvent struct {
	// ID is the node that was activated.
	ID string `json:"id"`
	// IDs lists every id affected by the activation (the node plus its
	// descendants in multiple mode, just the node in single mode).
	IDs []string `json:"ids"`
	// IsSelected indicates the final state of the affected ids.
	IsSelected bool `json:"is_selected"`
}

// UpdateEvent carries the authoritative delta for an activation.
// Hosts must apply it via the controller merge to obtain the new canonical
// selection, and must prefer it over the SelectEvent when both are present.
type UpdateEvent struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// LifecycleHooks defines callbacks for widget observability.
type LifecycleHooks struct {
	OnSelect func(context.Context, *SelectEvent)
	OnUpdate func(context.Context, *UpdateEvent)
	OnOpen   func(context.Context)
	OnClose  func(context.Context)
}
