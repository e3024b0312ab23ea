package domain

import "fmt"

// Selection represents the canonical selection value.
// It is owned exclusively by the controller; nodes only ever read it.
// In multiple mode IDs is an ordered set (unique members); in single mode
// it holds at most one ID.
type Selection struct {
	Mode SelectionMode `json:"mode"`
	IDs  []string      `json:"ids"`
}

// NewSelection creates an empty selection for the given mode.
func NewSelection(mode SelectionMode) *Selection {
	return &Selection{Mode: mode}
}

// Has reports whether id is part of the selection.
func (s *Selection) Has(id string) bool {
	if s == nil {
		return false
	}
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool {
	return s == nil || len(s.IDs) == 0
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.IDs)
}

// Single returns the selected id in single mode, or ok=false when nothing is selected.
func (s *Selection) Single() (string, bool) {
	if s.IsEmpty() {
		return "", false
	}
	return s.IDs[0], true
}

// Clone returns a copy whose IDs slice is isolated from the receiver.
func (s *Selection) Clone() *Selection {
	if s == nil {
		return nil
	}
	c := &Selection{Mode: s.Mode}
	if len(s.IDs) > 0 {
		c.IDs = append([]string(nil), s.IDs...)
	}
	return c
}

// CoerceIDs converts an arbitrary host-supplied value into a flat id list.
// Hosts feed selections through loose boundaries (JSON bodies, tool arguments),
// so a scalar becomes a one-element list, list members are stringified, and
// anything unusable collapses to an empty set instead of failing.
func CoerceIDs(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return dedupe(v)
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			switch id := item.(type) {
			case string:
				ids = append(ids, id)
			case float64:
				// JSON numbers arrive as float64; whole values keep their integer form.
				if id == float64(int64(id)) {
					ids = append(ids, fmt.Sprintf("%d", int64(id)))
				} else {
					ids = append(ids, fmt.Sprintf("%v", id))
				}
			case int, int32, int64:
				ids = append(ids, fmt.Sprintf("%d", id))
			}
		}
		return dedupe(ids)
	case float64:
		if v == float64(int64(v)) {
			return []string{fmt.Sprintf("%d", int64(v))}
		}
		return []string{fmt.Sprintf("%v", v)}
	case int:
		return []string{fmt.Sprintf("%d", v)}
	default:
		return nil
	}
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
