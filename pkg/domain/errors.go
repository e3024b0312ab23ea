package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNodeNotFound is returned when an id does not resolve to a node in the option tree.
var ErrNodeNotFound = errors.New("node not found")
