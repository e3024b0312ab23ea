package validator

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

// ValidationError represents a single tree consistency failure.
type ValidationError struct {
	NodeID string // Offending node id (may be empty when the id itself is missing)
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	if e.NodeID == "" {
		return e.Reason
	}
	return fmt.Sprintf("node %q: %s", e.NodeID, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidateTree checks the option tree preconditions the engine relies on:
// every node has an id and a label, ids are unique across the whole tree,
// and mode overrides are recognized values. The engine itself never crashes
// on a malformed tree, but duplicate ids produce undefined matching
// behavior, so hosts should validate at load time.
func ValidateTree(nodes []domain.OptionNode) error {
	var errs []error
	seen := make(map[string]bool)

	domain.Walk(nodes, func(node *domain.OptionNode, parent *domain.OptionNode, depth int) bool {
		switch {
		case node.ID == "":
			errs = append(errs, &ValidationError{Reason: fmt.Sprintf("missing id (label %q, depth %d)", node.Label, depth)})
		case seen[node.ID]:
			errs = append(errs, &ValidationError{NodeID: node.ID, Reason: "duplicate id"})
		default:
			seen[node.ID] = true
		}

		if node.Label == "" && node.ID != "" {
			errs = append(errs, &ValidationError{NodeID: node.ID, Reason: "missing label"})
		}
		if !node.Mode.Valid() {
			errs = append(errs, &ValidationError{NodeID: node.ID, Reason: fmt.Sprintf("unknown mode %q", node.Mode)})
		}
		return true
	})

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
