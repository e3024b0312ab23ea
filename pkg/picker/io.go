package picker

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// Row is one renderable line of the tree view.
type Row struct {
	Index       int
	ID          string
	Label       string
	Depth       int
	Status      domain.DisplayStatus
	HasChildren bool
	Collapsed   bool
}

// View is the full frame handed to the IO handler on each loop iteration.
type View struct {
	Rows    []Row
	Summary string
	Term    string
	Open    bool
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between plain text, JSON-lines and scripted (test) modes.
type IOHandler interface {
	// Output presents the current view to the user.
	Output(ctx context.Context, view View) error

	// Input reads a command from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. status updates).
	// This is distinct from view rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the summary line before
// outputting it. This allows for TUI rendering (markdown to ANSI) without
// coupling the picker package.
type ContentRenderer func(string) (string, error)
